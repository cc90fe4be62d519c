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

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create writes the order and its product associations. Callers run it
	// inside Store.InTx so both land together.
	Create(ctx context.Context, order *domain.Order) error
	List(ctx context.Context, clause query.Clause) ([]*domain.Order, error)
}

type orderRepository struct {
	db DBTX
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db DBTX) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, total_amount, order_date, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.CustomerID,
		order.TotalAmount,
		order.OrderDate,
		order.CreatedAt,
	)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	if len(order.Products) == 0 {
		return nil
	}

	values := make([]string, 0, len(order.Products))
	args := []interface{}{order.ID}
	for i, p := range order.Products {
		args = append(args, p.ID)
		values = append(values, fmt.Sprintf("($1, $%d, %d)", len(args), i))
	}

	assoc := `INSERT INTO order_products (order_id, product_id, position) VALUES ` + strings.Join(values, ", ")
	if _, err := r.db.ExecContext(ctx, assoc, args...); err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to associate order products: %w", err)
	}

	return nil
}

// List retrieves the orders selected by a compiled clause together with their
// customer and products
func (r *orderRepository) List(ctx context.Context, clause query.Clause) ([]*domain.Order, error) {
	q := `
		SELECT o.id, o.customer_id, o.total_amount, o.order_date, o.created_at,
		       ` + customerColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
	` + clause.SQL()

	rows, err := r.db.QueryContext(ctx, q, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	byID := make(map[uuid.UUID]*domain.Order)
	for rows.Next() {
		order := &domain.Order{Customer: &domain.Customer{}, Products: []*domain.Product{}}
		var phone sql.NullString
		err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.TotalAmount,
			&order.OrderDate,
			&order.CreatedAt,
			&order.Customer.ID,
			&order.Customer.Name,
			&order.Customer.Email,
			&phone,
			&order.Customer.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if phone.Valid {
			order.Customer.Phone = &phone.String
		}
		orders = append(orders, order)
		byID[order.ID] = order
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachProducts(ctx, orders, byID); err != nil {
		return nil, err
	}

	return orders, nil
}

// attachProducts loads the products of all orders with one query
func (r *orderRepository) attachProducts(ctx context.Context, orders []*domain.Order, byID map[uuid.UUID]*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	q := `
		SELECT op.order_id, ` + productColumns + `
		FROM order_products op
		JOIN products p ON p.id = op.product_id
		WHERE op.order_id = ANY($1::uuid[])
		ORDER BY op.order_id, op.position
	`

	rows, err := r.db.QueryContext(ctx, q, uuidStrings(ids))
	if err != nil {
		return fmt.Errorf("failed to load order products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		product := &domain.Product{}
		if err := rows.Scan(
			&orderID,
			&product.ID,
			&product.Name,
			&product.Price,
			&product.Stock,
			&product.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to scan order product: %w", err)
		}
		if order, ok := byID[orderID]; ok {
			order.Products = append(order.Products, product)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order products: %w", err)
	}
	return nil
}
