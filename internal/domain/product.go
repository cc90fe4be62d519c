package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold is the inclusive upper bound of the low_stock filter
	LowStockThreshold = 10

	// RestockThreshold selects products for restocking (stock strictly below it)
	RestockThreshold = 10

	// DefaultRestockAmount is added to each low-stock product when no amount is given
	DefaultRestockAmount = 10
)

// Product represents a product in the catalog
type Product struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// NewProductInput is a product to create. Price is the textual decimal form so
// it can be parsed into the fixed-point representation without float rounding.
type NewProductInput struct {
	Name  string `json:"name" validate:"required"`
	Price string `json:"price" validate:"required"`
	Stock *int   `json:"stock,omitempty"`
}

// UnmarshalJSON accepts the price as a JSON string or a JSON number. Numbers
// are decoded as decimals, never as floats.
func (in *NewProductInput) UnmarshalJSON(data []byte) error {
	type plain NewProductInput
	var raw struct {
		plain
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*in = NewProductInput(raw.plain)
	in.Price = ""

	switch {
	case len(raw.Price) == 0 || string(raw.Price) == "null":
	case raw.Price[0] == '"':
		return json.Unmarshal(raw.Price, &in.Price)
	default:
		var price decimal.Decimal
		if err := price.UnmarshalJSON(raw.Price); err != nil {
			return fmt.Errorf("price must be a number or a string: %w", err)
		}
		in.Price = price.String()
	}
	return nil
}
