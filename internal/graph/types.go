package graph

import (
	"crm-core/internal/domain"

	"github.com/graph-gophers/graphql-go"
)

type customerResolver struct {
	c *domain.Customer
}

func (r *customerResolver) ID() graphql.ID          { return graphql.ID(r.c.ID.String()) }
func (r *customerResolver) Name() string            { return r.c.Name }
func (r *customerResolver) Email() string           { return r.c.Email }
func (r *customerResolver) Phone() *string          { return r.c.Phone }
func (r *customerResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.c.CreatedAt} }

type productResolver struct {
	p *domain.Product
}

func (r *productResolver) ID() graphql.ID          { return graphql.ID(r.p.ID.String()) }
func (r *productResolver) Name() string            { return r.p.Name }
func (r *productResolver) Price() Decimal          { return Decimal{r.p.Price} }
func (r *productResolver) Stock() int32            { return int32(r.p.Stock) }
func (r *productResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.p.CreatedAt} }

type orderResolver struct {
	o *domain.Order
}

func (r *orderResolver) ID() graphql.ID { return graphql.ID(r.o.ID.String()) }

// Customer falls back to an id-only customer when the order was loaded
// without its join
func (r *orderResolver) Customer() *customerResolver {
	if r.o.Customer == nil {
		return &customerResolver{&domain.Customer{ID: r.o.CustomerID}}
	}
	return &customerResolver{r.o.Customer}
}

func (r *orderResolver) Products() []*productResolver { return products(r.o.Products) }
func (r *orderResolver) TotalAmount() Decimal          { return Decimal{r.o.TotalAmount} }
func (r *orderResolver) OrderDate() graphql.Time       { return graphql.Time{Time: r.o.OrderDate} }
func (r *orderResolver) CreatedAt() graphql.Time       { return graphql.Time{Time: r.o.CreatedAt} }

func customers(in []*domain.Customer) []*customerResolver {
	out := make([]*customerResolver, len(in))
	for i, c := range in {
		out[i] = &customerResolver{c}
	}
	return out
}

func products(in []*domain.Product) []*productResolver {
	out := make([]*productResolver, len(in))
	for i, p := range in {
		out[i] = &productResolver{p}
	}
	return out
}

func orders(in []*domain.Order) []*orderResolver {
	out := make([]*orderResolver, len(in))
	for i, o := range in {
		out[i] = &orderResolver{o}
	}
	return out
}

type createCustomerPayload struct {
	customer *domain.Customer
	message  string
}

func (p *createCustomerPayload) Customer() *customerResolver { return &customerResolver{p.customer} }
func (p *createCustomerPayload) Message() string             { return p.message }

type bulkCreateCustomersPayload struct {
	customers []*domain.Customer
	errors    []string
	message   string
}

func (p *bulkCreateCustomersPayload) Customers() []*customerResolver { return customers(p.customers) }
func (p *bulkCreateCustomersPayload) Errors() []string               { return p.errors }
func (p *bulkCreateCustomersPayload) Message() string                { return p.message }

type createProductPayload struct {
	product *domain.Product
	message string
}

func (p *createProductPayload) Product() *productResolver { return &productResolver{p.product} }
func (p *createProductPayload) Message() string           { return p.message }

type createOrderPayload struct {
	order   *domain.Order
	message string
}

func (p *createOrderPayload) Order() *orderResolver { return &orderResolver{p.order} }
func (p *createOrderPayload) Message() string       { return p.message }

type updateLowStockProductsPayload struct {
	products []*domain.Product
	message  string
}

func (p *updateLowStockProductsPayload) Products() []*productResolver { return products(p.products) }
func (p *updateLowStockProductsPayload) Message() string              { return p.message }
