package query

import (
	"fmt"
	"strings"

	"crm-core/internal/domain"
)

// Clause is a compiled filter and ordering. Where is empty when no filter field
// is set; placeholders in Where are numbered from $1 and match Args.
type Clause struct {
	Where   string
	Args    []interface{}
	OrderBy string
}

// SQL renders the clause for appending to a SELECT
func (c Clause) SQL() string {
	if c.Where == "" {
		return c.OrderBy
	}
	return c.Where + "\n" + c.OrderBy
}

type builder struct {
	conds []string
	args  []interface{}
}

// add appends a condition whose single "$%d" verb is bound to arg
func (b *builder) add(format string, arg interface{}) {
	b.args = append(b.args, arg)
	b.conds = append(b.conds, fmt.Sprintf(format, len(b.args)))
}

func (b *builder) where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conds, " AND ")
}

// CompileCustomers compiles a customer filter and ordering
func CompileCustomers(f CustomerFilter, keys []OrderKey) (Clause, error) {
	orderBy, err := customerOrder.compile(keys)
	if err != nil {
		return Clause{}, err
	}

	b := &builder{}
	if f.Name != nil {
		b.add("c.name ILIKE $%d", containsPattern(*f.Name))
	}
	if f.Email != nil {
		b.add("c.email ILIKE $%d", containsPattern(*f.Email))
	}
	if f.CreatedAtFrom != nil {
		b.add("c.created_at >= $%d", *f.CreatedAtFrom)
	}
	if f.CreatedAtTo != nil {
		b.add("c.created_at <= $%d", *f.CreatedAtTo)
	}
	if f.PhonePrefix != nil {
		b.add("c.phone LIKE $%d", prefixPattern(*f.PhonePrefix))
	}

	return Clause{Where: b.where(), Args: b.args, OrderBy: orderBy}, nil
}

// CompileProducts compiles a product filter and ordering
func CompileProducts(f ProductFilter, keys []OrderKey) (Clause, error) {
	orderBy, err := productOrder.compile(keys)
	if err != nil {
		return Clause{}, err
	}

	b := &builder{}
	if f.Name != nil {
		b.add("p.name ILIKE $%d", containsPattern(*f.Name))
	}
	if f.PriceMin != nil {
		b.add("p.price >= $%d", *f.PriceMin)
	}
	if f.PriceMax != nil {
		b.add("p.price <= $%d", *f.PriceMax)
	}
	if f.StockMin != nil {
		b.add("p.stock >= $%d", *f.StockMin)
	}
	if f.StockMax != nil {
		b.add("p.stock <= $%d", *f.StockMax)
	}
	if f.LowStock != nil && *f.LowStock {
		b.add("p.stock <= $%d", domain.LowStockThreshold)
	}

	return Clause{Where: b.where(), Args: b.args, OrderBy: orderBy}, nil
}

// CompileOrders compiles an order filter and ordering. The relation filters use
// EXISTS subqueries, so an order matching through several products still
// appears once.
func CompileOrders(f OrderFilter, keys []OrderKey) (Clause, error) {
	orderBy, err := orderOrder.compile(keys)
	if err != nil {
		return Clause{}, err
	}

	b := &builder{}
	if f.TotalAmountMin != nil {
		b.add("o.total_amount >= $%d", *f.TotalAmountMin)
	}
	if f.TotalAmountMax != nil {
		b.add("o.total_amount <= $%d", *f.TotalAmountMax)
	}
	if f.OrderDateFrom != nil {
		b.add("o.order_date >= $%d", *f.OrderDateFrom)
	}
	if f.OrderDateTo != nil {
		b.add("o.order_date <= $%d", *f.OrderDateTo)
	}
	if f.CustomerID != nil {
		b.add("o.customer_id = $%d", *f.CustomerID)
	}
	if f.CustomerName != nil {
		b.add("c.name ILIKE $%d", containsPattern(*f.CustomerName))
	}
	if f.ProductName != nil {
		b.add(`EXISTS (
			SELECT 1 FROM order_products op
			JOIN products p ON p.id = op.product_id
			WHERE op.order_id = o.id AND p.name ILIKE $%d)`, containsPattern(*f.ProductName))
	}
	if f.ProductID != nil {
		b.add(`EXISTS (
			SELECT 1 FROM order_products op
			WHERE op.order_id = o.id AND op.product_id = $%d)`, *f.ProductID)
	}

	return Clause{Where: b.where(), Args: b.args, OrderBy: orderBy}, nil
}

// CustomerSearch matches name, email or phone against term
func CustomerSearch(term string) Clause {
	return Clause{
		Where:   "WHERE (c.name ILIKE $1 OR c.email ILIKE $1 OR c.phone ILIKE $1)",
		Args:    []interface{}{containsPattern(term)},
		OrderBy: "ORDER BY " + customerOrder.natural + " ASC",
	}
}

// ProductSearch matches product names against term
func ProductSearch(term string) Clause {
	return Clause{
		Where:   "WHERE p.name ILIKE $1",
		Args:    []interface{}{containsPattern(term)},
		OrderBy: "ORDER BY " + productOrder.natural + " ASC",
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func prefixPattern(s string) string {
	return likeEscaper.Replace(s) + "%"
}
