package graph

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Decimal is the GraphQL Decimal scalar. Inputs may be strings or numbers;
// outputs are strings with two fractional digits.
type Decimal struct {
	decimal.Decimal
}

// ImplementsGraphQLType binds Decimal to the scalar of the same name
func (Decimal) ImplementsGraphQLType(name string) bool {
	return name == "Decimal"
}

// UnmarshalGraphQL parses literal and variable input values
func (d *Decimal) UnmarshalGraphQL(input interface{}) error {
	var err error
	switch v := input.(type) {
	case string:
		d.Decimal, err = decimal.NewFromString(v)
	case int32:
		d.Decimal = decimal.NewFromInt32(v)
	case int:
		d.Decimal = decimal.NewFromInt(int64(v))
	case float64:
		d.Decimal = decimal.NewFromFloat(v)
	case json.Number:
		d.Decimal, err = decimal.NewFromString(v.String())
	default:
		err = fmt.Errorf("unsupported type %T", input)
	}
	if err != nil {
		return fmt.Errorf("invalid Decimal value %v: must be a float or decimal", input)
	}
	return nil
}

// MarshalJSON renders the amount as a quoted fixed-point string
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.StringFixed(2))
}

func decimalPtr(d *Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	return &d.Decimal
}
