package service

import (
	"context"
	"strings"

	"crm-core/internal/domain"
	"crm-core/internal/query"
	"crm-core/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mockStore is an in-memory Store that keeps rows in insertion order. It
// understands the clauses the resolvers build for search, customer, total and
// low-stock filters and ignores the rest.
type mockStore struct {
	customers []*domain.Customer
	products  []*domain.Product
	orders    []*domain.Order

	// failures maps an operation name such as "customers.CreateBatch" to the
	// error it returns
	failures map[string]error
	pings    int

	// beforeInsert runs just before a batch insert, standing in for a
	// concurrent writer that commits first
	beforeInsert func()
}

func newMockStore() *mockStore {
	return &mockStore{failures: make(map[string]error)}
}

func (s *mockStore) fail(op string) error {
	return s.failures[op]
}

func (s *mockStore) Customers() repository.CustomerRepository { return &mockCustomers{s} }
func (s *mockStore) Products() repository.ProductRepository   { return &mockProducts{s} }
func (s *mockStore) Orders() repository.OrderRepository       { return &mockOrders{s} }

func (s *mockStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := s.fail("tx.Begin"); err != nil {
		return err
	}

	customers := append([]*domain.Customer(nil), s.customers...)
	orders := append([]*domain.Order(nil), s.orders...)
	products := make([]*domain.Product, len(s.products))
	for i, p := range s.products {
		cp := *p
		products[i] = &cp
	}

	if err := fn(s); err != nil {
		s.customers, s.orders = customers, orders
		for i, p := range products {
			*s.products[i] = *p
		}
		s.products = s.products[:len(products)]
		return err
	}
	return nil
}

func (s *mockStore) Ping(ctx context.Context) error {
	s.pings++
	return s.fail("ping")
}

type mockCustomers struct{ s *mockStore }

func (m *mockCustomers) Create(ctx context.Context, c *domain.Customer) error {
	return m.CreateBatch(ctx, []*domain.Customer{c})
}

func (m *mockCustomers) CreateBatch(ctx context.Context, cs []*domain.Customer) error {
	if err := m.s.fail("customers.CreateBatch"); err != nil {
		return err
	}
	for _, c := range cs {
		if m.emailTaken(c.Email) {
			return repository.ErrEmailTaken
		}
	}
	m.s.customers = append(m.s.customers, cs...)
	return nil
}

func (m *mockCustomers) CreateBatchSkippingTaken(ctx context.Context, cs []*domain.Customer) ([]*domain.Customer, error) {
	if err := m.s.fail("customers.CreateBatchSkippingTaken"); err != nil {
		return nil, err
	}
	if m.s.beforeInsert != nil {
		m.s.beforeInsert()
	}
	created := []*domain.Customer{}
	for _, c := range cs {
		if m.emailTaken(c.Email) {
			continue
		}
		m.s.customers = append(m.s.customers, c)
		created = append(created, c)
	}
	return created, nil
}

func (m *mockCustomers) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	if err := m.s.fail("customers.FindByID"); err != nil {
		return nil, err
	}
	for _, c := range m.s.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrCustomerNotFound
}

func (m *mockCustomers) emailTaken(email string) bool {
	for _, c := range m.s.customers {
		if c.Email == email {
			return true
		}
	}
	return false
}

func (m *mockCustomers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if err := m.s.fail("customers.ExistsByEmail"); err != nil {
		return false, err
	}
	return m.emailTaken(email), nil
}

func (m *mockCustomers) List(ctx context.Context, clause query.Clause) ([]*domain.Customer, error) {
	if err := m.s.fail("customers.List"); err != nil {
		return nil, err
	}
	out := []*domain.Customer{}
	search := query.CustomerSearch("")
	for _, c := range m.s.customers {
		if clause.Where == search.Where {
			term := likeTerm(clause.Args[0])
			phone := ""
			if c.Phone != nil {
				phone = *c.Phone
			}
			if !containsFold(c.Name, term) && !containsFold(c.Email, term) && !containsFold(phone, term) {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

type mockProducts struct{ s *mockStore }

func (m *mockProducts) Create(ctx context.Context, p *domain.Product) error {
	if err := m.s.fail("products.Create"); err != nil {
		return err
	}
	m.s.products = append(m.s.products, p)
	return nil
}

func (m *mockProducts) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []*domain.Product{}
	for _, p := range m.s.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProducts) List(ctx context.Context, clause query.Clause) ([]*domain.Product, error) {
	if err := m.s.fail("products.List"); err != nil {
		return nil, err
	}
	out := []*domain.Product{}
	for _, p := range m.s.products {
		switch {
		case clause.Where == query.ProductSearch("").Where:
			if !containsFold(p.Name, likeTerm(clause.Args[0])) {
				continue
			}
		case clause.Where == "WHERE p.stock <= $1":
			if p.Stock > clause.Args[0].(int) {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProducts) RestockBelow(ctx context.Context, threshold, amount int) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range m.s.products {
		if p.Stock < threshold {
			p.Stock += amount
			out = append(out, p)
		}
	}
	if err := m.s.fail("products.RestockBelow"); err != nil {
		return nil, err
	}
	return out, nil
}

type mockOrders struct{ s *mockStore }

func (m *mockOrders) Create(ctx context.Context, o *domain.Order) error {
	if err := m.s.fail("orders.Create"); err != nil {
		return err
	}
	m.s.orders = append(m.s.orders, o)
	return nil
}

func (m *mockOrders) List(ctx context.Context, clause query.Clause) ([]*domain.Order, error) {
	if err := m.s.fail("orders.List"); err != nil {
		return nil, err
	}
	out := []*domain.Order{}
	for _, o := range m.s.orders {
		if !orderMatches(o, clause) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func orderMatches(o *domain.Order, clause query.Clause) bool {
	for _, arg := range clause.Args {
		switch v := arg.(type) {
		case uuid.UUID:
			if strings.Contains(clause.Where, "o.customer_id") && o.CustomerID != v {
				return false
			}
		case decimal.Decimal:
			if strings.Contains(clause.Where, "o.total_amount >=") && o.TotalAmount.LessThan(v) {
				return false
			}
		}
	}
	return true
}

func likeTerm(arg interface{}) string {
	return strings.Trim(arg.(string), "%")
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
