package repository

import (
	"context"
	"fmt"

	"crm-core/internal/domain"
	"crm-core/internal/query"

	"github.com/google/uuid"
)

const productColumns = "p.id, p.name, p.price, p.stock, p.created_at"

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error)
	List(ctx context.Context, clause query.Clause) ([]*domain.Product, error)
	RestockBelow(ctx context.Context, threshold, amount int) ([]*domain.Product, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, price, stock, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Price,
		product.Stock,
		product.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByIDs retrieves the distinct products among ids in insertion order.
// Unknown ids are skipped, so the result may be shorter than ids.
func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return []*domain.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = ANY($1::uuid[]) ORDER BY p.seq ASC`

	return r.collect(ctx, "find products by IDs", query, uuidStrings(ids))
}

// List retrieves the products selected by a compiled clause
func (r *productRepository) List(ctx context.Context, clause query.Clause) ([]*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products p ` + clause.SQL()
	return r.collect(ctx, "list products", q, clause.Args...)
}

// RestockBelow adds amount to the stock of every product whose stock is below
// threshold, in one statement, and returns the updated products in insertion order
func (r *productRepository) RestockBelow(ctx context.Context, threshold, amount int) ([]*domain.Product, error) {
	query := `
		WITH p AS (
			UPDATE products
			SET stock = stock + $2
			WHERE stock < $1
			RETURNING id, name, price, stock, created_at, seq
		)
		SELECT ` + productColumns + ` FROM p ORDER BY p.seq ASC
	`
	return r.collect(ctx, "restock products", query, threshold, amount)
}

func (r *productRepository) collect(ctx context.Context, op, query string, args ...interface{}) ([]*domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.Stock,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
