package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"crm-core/internal/domain"
	"crm-core/internal/query"

	"github.com/google/uuid"
)

const customerColumns = "c.id, c.name, c.email, c.phone, c.created_at"

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	CreateBatch(ctx context.Context, customers []*domain.Customer) error
	CreateBatchSkippingTaken(ctx context.Context, customers []*domain.Customer) ([]*domain.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, clause query.Clause) ([]*domain.Customer, error)
}

type customerRepository struct {
	db DBTX
}

// NewCustomerRepository creates a new instance of CustomerRepository
func NewCustomerRepository(db DBTX) CustomerRepository {
	return &customerRepository{db: db}
}

// Create inserts a new customer using parameterized queries
func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.CreateBatch(ctx, []*domain.Customer{customer})
}

// CreateBatch inserts all customers with a single multi-row INSERT, so either
// every row is written or none is
func (r *customerRepository) CreateBatch(ctx context.Context, customers []*domain.Customer) error {
	if len(customers) == 0 {
		return nil
	}

	query, args := insertCustomers(customers)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create customers: %w", err)
	}

	return nil
}

// CreateBatchSkippingTaken inserts the customers whose email is not yet
// registered and returns them in input order. Rows that lose the email to an
// existing customer are left out instead of failing the statement.
func (r *customerRepository) CreateBatchSkippingTaken(ctx context.Context, customers []*domain.Customer) ([]*domain.Customer, error) {
	created := []*domain.Customer{}
	if len(customers) == 0 {
		return created, nil
	}

	query, args := insertCustomers(customers)
	rows, err := r.db.QueryContext(ctx, query+` ON CONFLICT (email) DO NOTHING RETURNING id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customers: %w", err)
	}
	defer rows.Close()

	inserted := make(map[uuid.UUID]bool, len(customers))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan customer id: %w", err)
		}
		inserted[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating created customers: %w", err)
	}

	for _, c := range customers {
		if inserted[c.ID] {
			created = append(created, c)
		}
	}
	return created, nil
}

func insertCustomers(customers []*domain.Customer) (string, []interface{}) {
	values := make([]string, 0, len(customers))
	args := make([]interface{}, 0, len(customers)*5)
	for i, c := range customers {
		n := i * 5
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5))
		args = append(args, c.ID, c.Name, c.Email, nullString(c.Phone), c.CreatedAt)
	}
	return `INSERT INTO customers (id, name, email, phone, created_at) VALUES ` + strings.Join(values, ", "), args
}

// FindByID retrieves a customer by ID
func (r *customerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c WHERE c.id = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}

	return customer, nil
}

// ExistsByEmail reports whether the email is already registered
func (r *customerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check customer email: %w", err)
	}
	return exists, nil
}

// List retrieves the customers selected by a compiled clause
func (r *customerRepository) List(ctx context.Context, clause query.Clause) ([]*domain.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers c ` + clause.SQL()

	rows, err := r.db.QueryContext(ctx, q, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*domain.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	customer := &domain.Customer{}
	var phone sql.NullString

	if err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&phone,
		&customer.CreatedAt,
	); err != nil {
		return nil, err
	}

	if phone.Valid {
		customer.Phone = &phone.String
	}
	return customer, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
