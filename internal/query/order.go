package query

import (
	"fmt"
	"strings"

	"crm-core/internal/domain"
)

// Direction is a sort direction token
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderKey is one (field, direction) pair of a requested ordering.
// An empty direction means ascending.
type OrderKey struct {
	Field     string
	Direction string
}

// ParseOrderKey parses the "field" or "field:direction" form used on query strings
func ParseOrderKey(token string) OrderKey {
	field, dir, _ := strings.Cut(strings.TrimSpace(token), ":")
	return OrderKey{Field: strings.TrimSpace(field), Direction: strings.TrimSpace(dir)}
}

func parseDirection(token string) (Direction, error) {
	switch strings.ToLower(token) {
	case "", string(Asc):
		return Asc, nil
	case string(Desc):
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: unknown sort direction %q", domain.ErrInvalidArgument, token)
	}
}

// orderable maps public order fields to SQL expressions for one entity
type orderable struct {
	entity  string
	columns map[string]string
	// natural is the insertion-order column used as the final tie-break
	natural string
}

var (
	customerOrder = orderable{
		entity: "customer",
		columns: map[string]string{
			"name":       "c.name",
			"email":      "c.email",
			"phone":      "c.phone",
			"created_at": "c.created_at",
		},
		natural: "c.seq",
	}

	productOrder = orderable{
		entity: "product",
		columns: map[string]string{
			"name":       "p.name",
			"price":      "p.price",
			"stock":      "p.stock",
			"created_at": "p.created_at",
		},
		natural: "p.seq",
	}

	orderOrder = orderable{
		entity: "order",
		columns: map[string]string{
			"total_amount":  "o.total_amount",
			"order_date":    "o.order_date",
			"customer_name": "c.name",
			"created_at":    "o.created_at",
		},
		natural: "o.seq",
	}
)

// compile builds the ORDER BY clause. Keys apply in the listed priority and the
// natural insertion order breaks the remaining ties, so results are deterministic.
func (o orderable) compile(keys []OrderKey) (string, error) {
	parts := make([]string, 0, len(keys)+1)
	for _, key := range keys {
		column, ok := o.columns[strings.ToLower(key.Field)]
		if !ok {
			return "", fmt.Errorf("%w: cannot order %ss by %q", domain.ErrInvalidArgument, o.entity, key.Field)
		}
		dir, err := parseDirection(key.Direction)
		if err != nil {
			return "", err
		}
		parts = append(parts, column+" "+strings.ToUpper(string(dir)))
	}
	parts = append(parts, o.natural+" ASC")
	return "ORDER BY " + strings.Join(parts, ", "), nil
}
