package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"crm-core/internal/domain"
	"crm-core/internal/query"
	"crm-core/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MinSearchTermLength is the shortest term the search operations act on
const MinSearchTermLength = 2

// Greeting is returned by Hello once the store answers
const Greeting = "Hello, GraphQL!"

// QueryResolver exposes the read operations. None of them mutate state and a
// query that matches nothing returns an empty slice, never an error.
type QueryResolver interface {
	Hello(ctx context.Context) (string, error)
	ListCustomers(ctx context.Context, filter query.CustomerFilter, orderBy []query.OrderKey) ([]*domain.Customer, error)
	ListProducts(ctx context.Context, filter query.ProductFilter, orderBy []query.OrderKey) ([]*domain.Product, error)
	ListOrders(ctx context.Context, filter query.OrderFilter, orderBy []query.OrderKey) ([]*domain.Order, error)
	SearchCustomers(ctx context.Context, term string) ([]*domain.Customer, error)
	SearchProducts(ctx context.Context, term string) ([]*domain.Product, error)
	ProductsByPriceRange(ctx context.Context, min, max *decimal.Decimal) ([]*domain.Product, error)
	OrdersForCustomer(ctx context.Context, customerID string, status *string) ([]*domain.Order, error)
	HighValueOrders(ctx context.Context, minTotal decimal.Decimal) ([]*domain.Order, error)
}

type queryResolver struct {
	store  repository.Store
	logger *zap.Logger
}

// NewQueryResolver creates a new instance of QueryResolver
func NewQueryResolver(store repository.Store, logger *zap.Logger) QueryResolver {
	return &queryResolver{store: store, logger: logger}
}

// Hello answers with a fixed greeting after a round trip to the store
func (r *queryResolver) Hello(ctx context.Context) (string, error) {
	if err := r.store.Ping(ctx); err != nil {
		return "", storeFailure("ping store", err)
	}
	return Greeting, nil
}

func (r *queryResolver) ListCustomers(ctx context.Context, filter query.CustomerFilter, orderBy []query.OrderKey) ([]*domain.Customer, error) {
	clause, err := query.CompileCustomers(filter, orderBy)
	if err != nil {
		return nil, err
	}

	customers, err := r.store.Customers().List(ctx, clause)
	if err != nil {
		return nil, storeFailure("list customers", err)
	}
	return customers, nil
}

func (r *queryResolver) ListProducts(ctx context.Context, filter query.ProductFilter, orderBy []query.OrderKey) ([]*domain.Product, error) {
	clause, err := query.CompileProducts(filter, orderBy)
	if err != nil {
		return nil, err
	}

	products, err := r.store.Products().List(ctx, clause)
	if err != nil {
		return nil, storeFailure("list products", err)
	}
	return products, nil
}

func (r *queryResolver) ListOrders(ctx context.Context, filter query.OrderFilter, orderBy []query.OrderKey) ([]*domain.Order, error) {
	clause, err := query.CompileOrders(filter, orderBy)
	if err != nil {
		return nil, err
	}

	orders, err := r.store.Orders().List(ctx, clause)
	if err != nil {
		return nil, storeFailure("list orders", err)
	}
	return orders, nil
}

// SearchCustomers matches term against name, email or phone
func (r *queryResolver) SearchCustomers(ctx context.Context, term string) ([]*domain.Customer, error) {
	term, ok := searchable(term)
	if !ok {
		return []*domain.Customer{}, nil
	}

	customers, err := r.store.Customers().List(ctx, query.CustomerSearch(term))
	if err != nil {
		return nil, storeFailure("search customers", err)
	}
	return customers, nil
}

// SearchProducts matches term against product names
func (r *queryResolver) SearchProducts(ctx context.Context, term string) ([]*domain.Product, error) {
	term, ok := searchable(term)
	if !ok {
		return []*domain.Product{}, nil
	}

	products, err := r.store.Products().List(ctx, query.ProductSearch(term))
	if err != nil {
		return nil, storeFailure("search products", err)
	}
	return products, nil
}

// ProductsByPriceRange filters on an inclusive price range; a nil bound is open
func (r *queryResolver) ProductsByPriceRange(ctx context.Context, min, max *decimal.Decimal) ([]*domain.Product, error) {
	return r.ListProducts(ctx, query.ProductFilter{PriceMin: min, PriceMax: max}, nil)
}

// OrdersForCustomer lists the orders of one customer. An unknown or malformed
// customer id yields no orders. status is accepted but not applied.
func (r *queryResolver) OrdersForCustomer(ctx context.Context, customerID string, status *string) ([]*domain.Order, error) {
	if status != nil {
		r.logger.Debug("Ignoring order status filter", zap.String("status", *status))
	}

	id, err := uuid.Parse(customerID)
	if err != nil {
		return []*domain.Order{}, nil
	}

	if _, err := r.store.Customers().FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return []*domain.Order{}, nil
		}
		return nil, storeFailure("find customer", err)
	}

	return r.ListOrders(ctx, query.OrderFilter{CustomerID: &id}, nil)
}

func (r *queryResolver) HighValueOrders(ctx context.Context, minTotal decimal.Decimal) ([]*domain.Order, error) {
	return r.ListOrders(ctx, query.OrderFilter{TotalAmountMin: &minTotal}, nil)
}

// searchable trims term and reports whether it is long enough to search for
func searchable(term string) (string, bool) {
	term = strings.TrimSpace(term)
	return term, utf8.RuneCountInString(term) >= MinSearchTermLength
}

// storeFailure classifies an unexpected store error as Internal while keeping
// errors that already carry a kind
func storeFailure(op string, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	return fmt.Errorf("%w: failed to %s: %w", domain.ErrInternal, op, err)
}
