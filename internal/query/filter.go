// Package query compiles per-entity filter and ordering requests into
// SQL predicates and ORDER BY clauses over the entity tables.
//
// Every field of a filter is optional; a nil field imposes no constraint and
// the present fields are combined with AND.
package query

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerFilter restricts a customer listing
type CustomerFilter struct {
	Name          *string    // case-insensitive substring
	Email         *string    // case-insensitive substring
	CreatedAtFrom *time.Time // inclusive
	CreatedAtTo   *time.Time // inclusive
	PhonePrefix   *string
}

// ProductFilter restricts a product listing
type ProductFilter struct {
	Name     *string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
	StockMin *int
	StockMax *int
	// LowStock set to true keeps products with stock <= domain.LowStockThreshold.
	// false imposes no constraint.
	LowStock *bool
}

// OrderFilter restricts an order listing. ProductName and ProductID match an
// order when any of its products matches.
type OrderFilter struct {
	TotalAmountMin *decimal.Decimal
	TotalAmountMax *decimal.Decimal
	OrderDateFrom  *time.Time
	OrderDateTo    *time.Time
	CustomerName   *string
	ProductName    *string
	ProductID      *uuid.UUID
	CustomerID     *uuid.UUID
}

// Ptr returns a pointer to v. Handy for building filters.
func Ptr[T any](v T) *T {
	return &v
}
