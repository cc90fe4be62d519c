package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"crm-core/internal/domain"
	"crm-core/internal/query"
	"crm-core/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// fakeQueries records the arguments of the last call and answers with err or
// the configured rows
type fakeQueries struct {
	err error

	customers []*domain.Customer
	products  []*domain.Product
	orders    []*domain.Order

	customerFilter query.CustomerFilter
	productFilter  query.ProductFilter
	orderFilter    query.OrderFilter
	orderBy        []query.OrderKey
	term           string
	min, max       *decimal.Decimal
	minTotal       decimal.Decimal
	customerID     string
	status         *string
}

func (f *fakeQueries) Hello(ctx context.Context) (string, error) {
	return service.Greeting, f.err
}

func (f *fakeQueries) ListCustomers(ctx context.Context, filter query.CustomerFilter, orderBy []query.OrderKey) ([]*domain.Customer, error) {
	f.customerFilter, f.orderBy = filter, orderBy
	return f.customers, f.err
}

func (f *fakeQueries) ListProducts(ctx context.Context, filter query.ProductFilter, orderBy []query.OrderKey) ([]*domain.Product, error) {
	f.productFilter, f.orderBy = filter, orderBy
	return f.products, f.err
}

func (f *fakeQueries) ListOrders(ctx context.Context, filter query.OrderFilter, orderBy []query.OrderKey) ([]*domain.Order, error) {
	f.orderFilter, f.orderBy = filter, orderBy
	return f.orders, f.err
}

func (f *fakeQueries) SearchCustomers(ctx context.Context, term string) ([]*domain.Customer, error) {
	f.term = term
	return f.customers, f.err
}

func (f *fakeQueries) SearchProducts(ctx context.Context, term string) ([]*domain.Product, error) {
	f.term = term
	return f.products, f.err
}

func (f *fakeQueries) ProductsByPriceRange(ctx context.Context, min, max *decimal.Decimal) ([]*domain.Product, error) {
	f.min, f.max = min, max
	return f.products, f.err
}

func (f *fakeQueries) OrdersForCustomer(ctx context.Context, customerID string, status *string) ([]*domain.Order, error) {
	f.customerID, f.status = customerID, status
	return f.orders, f.err
}

func (f *fakeQueries) HighValueOrders(ctx context.Context, minTotal decimal.Decimal) ([]*domain.Order, error) {
	f.minTotal = minTotal
	return f.orders, f.err
}

type fakeMutations struct {
	err error

	customerInput domain.NewCustomerInput
	bulkInputs    []domain.NewCustomerInput
	productInput  domain.NewProductInput
	orderInput    domain.NewOrderInput
	restockAmount *int

	bulk    *service.BulkCustomersResult
	restock *service.RestockResult
}

func (f *fakeMutations) CreateCustomer(ctx context.Context, input domain.NewCustomerInput) (*service.CustomerResult, error) {
	f.customerInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &service.CustomerResult{
		Customer: &domain.Customer{Name: input.Name, Email: input.Email, Phone: input.Phone},
		Message:  service.MsgCustomerCreated,
	}, nil
}

func (f *fakeMutations) BulkCreateCustomers(ctx context.Context, inputs []domain.NewCustomerInput) (*service.BulkCustomersResult, error) {
	f.bulkInputs = inputs
	return f.bulk, f.err
}

func (f *fakeMutations) CreateProduct(ctx context.Context, input domain.NewProductInput) (*service.ProductResult, error) {
	f.productInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &service.ProductResult{
		Product: &domain.Product{Name: input.Name, Price: decimal.RequireFromString(input.Price)},
		Message: service.MsgProductCreated,
	}, nil
}

func (f *fakeMutations) CreateOrder(ctx context.Context, input domain.NewOrderInput) (*service.OrderResult, error) {
	f.orderInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &service.OrderResult{
		Order:   &domain.Order{TotalAmount: decimal.RequireFromString("1499.98")},
		Message: service.MsgOrderCreated,
	}, nil
}

func (f *fakeMutations) UpdateLowStockProducts(ctx context.Context, restockAmount *int) (*service.RestockResult, error) {
	f.restockAmount = restockAmount
	return f.restock, f.err
}

func newTestRouter() (http.Handler, *fakeQueries, *fakeMutations) {
	q, m := &fakeQueries{}, &fakeMutations{}
	logger := zap.NewNop()

	r := chi.NewRouter()
	NewCustomerHandler(q, m, logger).RegisterRoutes(r)
	NewProductHandler(q, m, logger).RegisterRoutes(r)
	NewOrderHandler(q, m, logger).RegisterRoutes(r)
	return r, q, m
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
