package graph

import (
	"context"
	"time"

	"crm-core/internal/domain"
	"crm-core/internal/query"
	"crm-core/internal/service"

	"github.com/google/uuid"
	"github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

// Resolver is the root resolver for the GraphQL schema. Query fields go to the
// QueryResolver and mutation fields to the MutationResolver.
type Resolver struct {
	queries   service.QueryResolver
	mutations service.MutationResolver
	logger    *zap.Logger
}

// NewResolver creates the root resolver
func NewResolver(queries service.QueryResolver, mutations service.MutationResolver, logger *zap.Logger) *Resolver {
	return &Resolver{
		queries:   queries,
		mutations: mutations,
		logger:    logger,
	}
}

type orderKeyInput struct {
	Field     string
	Direction *string
}

type customerFilterInput struct {
	Name          *string
	Email         *string
	CreatedAtFrom *graphql.Time
	CreatedAtTo   *graphql.Time
	PhonePrefix   *string
}

type productFilterInput struct {
	Name     *string
	PriceMin *Decimal
	PriceMax *Decimal
	StockMin *int32
	StockMax *int32
	LowStock *bool
}

type orderFilterInput struct {
	TotalAmountMin *Decimal
	TotalAmountMax *Decimal
	OrderDateFrom  *graphql.Time
	OrderDateTo    *graphql.Time
	CustomerName   *string
	ProductName    *string
	ProductID      *graphql.ID
}

type createCustomerInput struct {
	Name  string
	Email string
	Phone *string
}

type createProductInput struct {
	Name  string
	Price Decimal
	Stock *int32
}

type createOrderInput struct {
	CustomerID graphql.ID
	ProductIDs []graphql.ID
	OrderDate  *graphql.Time
}

func (r *Resolver) Hello(ctx context.Context) (string, error) {
	greeting, err := r.queries.Hello(ctx)
	if err != nil {
		return "", r.fail("hello", err)
	}
	return greeting, nil
}

func (r *Resolver) Customers(ctx context.Context, args struct {
	Filter  *customerFilterInput
	OrderBy *[]orderKeyInput
}) ([]*customerResolver, error) {
	var filter query.CustomerFilter
	if f := args.Filter; f != nil {
		filter = query.CustomerFilter{
			Name:          f.Name,
			Email:         f.Email,
			CreatedAtFrom: timePtr(f.CreatedAtFrom),
			CreatedAtTo:   timePtr(f.CreatedAtTo),
			PhonePrefix:   f.PhonePrefix,
		}
	}

	result, err := r.queries.ListCustomers(ctx, filter, orderKeys(args.OrderBy))
	if err != nil {
		return nil, r.fail("customers", err)
	}
	return customers(result), nil
}

func (r *Resolver) Products(ctx context.Context, args struct {
	Filter  *productFilterInput
	OrderBy *[]orderKeyInput
}) ([]*productResolver, error) {
	var filter query.ProductFilter
	if f := args.Filter; f != nil {
		filter = query.ProductFilter{
			Name:     f.Name,
			PriceMin: decimalPtr(f.PriceMin),
			PriceMax: decimalPtr(f.PriceMax),
			StockMin: intPtr(f.StockMin),
			StockMax: intPtr(f.StockMax),
			LowStock: f.LowStock,
		}
	}

	result, err := r.queries.ListProducts(ctx, filter, orderKeys(args.OrderBy))
	if err != nil {
		return nil, r.fail("products", err)
	}
	return products(result), nil
}

func (r *Resolver) Orders(ctx context.Context, args struct {
	Filter  *orderFilterInput
	OrderBy *[]orderKeyInput
}) ([]*orderResolver, error) {
	var filter query.OrderFilter
	if f := args.Filter; f != nil {
		filter = query.OrderFilter{
			TotalAmountMin: decimalPtr(f.TotalAmountMin),
			TotalAmountMax: decimalPtr(f.TotalAmountMax),
			OrderDateFrom:  timePtr(f.OrderDateFrom),
			OrderDateTo:    timePtr(f.OrderDateTo),
			CustomerName:   f.CustomerName,
			ProductName:    f.ProductName,
		}
		if f.ProductID != nil {
			id, err := uuid.Parse(string(*f.ProductID))
			if err != nil {
				return nil, r.fail("orders", invalidID("productId"))
			}
			filter.ProductID = &id
		}
	}

	result, err := r.queries.ListOrders(ctx, filter, orderKeys(args.OrderBy))
	if err != nil {
		return nil, r.fail("orders", err)
	}
	return orders(result), nil
}

func (r *Resolver) SearchCustomers(ctx context.Context, args struct{ Term string }) ([]*customerResolver, error) {
	result, err := r.queries.SearchCustomers(ctx, args.Term)
	if err != nil {
		return nil, r.fail("searchCustomers", err)
	}
	return customers(result), nil
}

func (r *Resolver) SearchProducts(ctx context.Context, args struct{ Term string }) ([]*productResolver, error) {
	result, err := r.queries.SearchProducts(ctx, args.Term)
	if err != nil {
		return nil, r.fail("searchProducts", err)
	}
	return products(result), nil
}

func (r *Resolver) ProductsByPriceRange(ctx context.Context, args struct {
	Min *Decimal
	Max *Decimal
}) ([]*productResolver, error) {
	result, err := r.queries.ProductsByPriceRange(ctx, decimalPtr(args.Min), decimalPtr(args.Max))
	if err != nil {
		return nil, r.fail("productsByPriceRange", err)
	}
	return products(result), nil
}

func (r *Resolver) OrdersForCustomer(ctx context.Context, args struct {
	CustomerID graphql.ID
	Status     *string
}) ([]*orderResolver, error) {
	result, err := r.queries.OrdersForCustomer(ctx, string(args.CustomerID), args.Status)
	if err != nil {
		return nil, r.fail("ordersForCustomer", err)
	}
	return orders(result), nil
}

func (r *Resolver) HighValueOrders(ctx context.Context, args struct{ MinTotal Decimal }) ([]*orderResolver, error) {
	result, err := r.queries.HighValueOrders(ctx, args.MinTotal.Decimal)
	if err != nil {
		return nil, r.fail("highValueOrders", err)
	}
	return orders(result), nil
}

func (r *Resolver) CreateCustomer(ctx context.Context, args struct{ Input createCustomerInput }) (*createCustomerPayload, error) {
	result, err := r.mutations.CreateCustomer(ctx, customerInput(args.Input))
	if err != nil {
		return nil, r.fail("createCustomer", err)
	}
	return &createCustomerPayload{customer: result.Customer, message: result.Message}, nil
}

func (r *Resolver) BulkCreateCustomers(ctx context.Context, args struct{ Input []createCustomerInput }) (*bulkCreateCustomersPayload, error) {
	inputs := make([]domain.NewCustomerInput, len(args.Input))
	for i, in := range args.Input {
		inputs[i] = customerInput(in)
	}

	result, err := r.mutations.BulkCreateCustomers(ctx, inputs)
	if err != nil {
		return nil, r.fail("bulkCreateCustomers", err)
	}
	return &bulkCreateCustomersPayload{
		customers: result.Customers,
		errors:    result.Errors,
		message:   result.Message,
	}, nil
}

func (r *Resolver) CreateProduct(ctx context.Context, args struct{ Input createProductInput }) (*createProductPayload, error) {
	result, err := r.mutations.CreateProduct(ctx, domain.NewProductInput{
		Name:  args.Input.Name,
		Price: args.Input.Price.String(),
		Stock: intPtr(args.Input.Stock),
	})
	if err != nil {
		return nil, r.fail("createProduct", err)
	}
	return &createProductPayload{product: result.Product, message: result.Message}, nil
}

func (r *Resolver) CreateOrder(ctx context.Context, args struct{ Input createOrderInput }) (*createOrderPayload, error) {
	productIDs := make([]string, len(args.Input.ProductIDs))
	for i, id := range args.Input.ProductIDs {
		productIDs[i] = string(id)
	}

	result, err := r.mutations.CreateOrder(ctx, domain.NewOrderInput{
		CustomerID: string(args.Input.CustomerID),
		ProductIDs: productIDs,
		OrderDate:  timePtr(args.Input.OrderDate),
	})
	if err != nil {
		return nil, r.fail("createOrder", err)
	}
	return &createOrderPayload{order: result.Order, message: result.Message}, nil
}

func (r *Resolver) UpdateLowStockProducts(ctx context.Context, args struct{ RestockAmount *int32 }) (*updateLowStockProductsPayload, error) {
	result, err := r.mutations.UpdateLowStockProducts(ctx, intPtr(args.RestockAmount))
	if err != nil {
		return nil, r.fail("updateLowStockProducts", err)
	}
	return &updateLowStockProductsPayload{products: result.Products, message: result.Message}, nil
}

func customerInput(in createCustomerInput) domain.NewCustomerInput {
	return domain.NewCustomerInput{Name: in.Name, Email: in.Email, Phone: in.Phone}
}

func orderKeys(in *[]orderKeyInput) []query.OrderKey {
	if in == nil {
		return nil
	}
	keys := make([]query.OrderKey, len(*in))
	for i, k := range *in {
		keys[i] = query.OrderKey{Field: k.Field}
		if k.Direction != nil {
			keys[i].Direction = *k.Direction
		}
	}
	return keys
}

func timePtr(t *graphql.Time) *time.Time {
	if t == nil {
		return nil
	}
	return &t.Time
}

func intPtr(n *int32) *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}
