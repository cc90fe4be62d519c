package repository

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"crm-core/internal/database"
	"crm-core/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var testDB *sql.DB

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	ctx := context.Background()

	dbContainer, err := postgres.Run(
		ctx,
		"postgres:15",
		postgres.WithDatabase("crm_test"),
		postgres.WithUsername("crm"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := dbContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return dbContainer.Terminate, err
	}

	testDB, err = sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	// Same schema as production
	if err := database.RunMigrations(testDB, "../../migrations", zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	code := m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown postgres container: %v", err)
		}
	}
	os.Exit(code)
}

// resetTables empties every table so each test sees natural order from scratch
func resetTables(t *testing.T) {
	t.Helper()
	if _, err := testDB.Exec(`TRUNCATE order_products, orders, products, customers RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("Failed to reset tables: %v", err)
	}
}

// now is truncated to the precision Postgres stores
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func newCustomer(name, email string, phone *string) *domain.Customer {
	return &domain.Customer{ID: uuid.New(), Name: name, Email: email, Phone: phone, CreatedAt: now()}
}

func newProduct(name, price string, stock int) *domain.Product {
	return &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		CreatedAt: now(),
	}
}

func seedCustomers(t *testing.T, customers ...*domain.Customer) {
	t.Helper()
	if err := NewCustomerRepository(testDB).CreateBatch(context.Background(), customers); err != nil {
		t.Fatalf("Failed to seed customers: %v", err)
	}
}

func seedProducts(t *testing.T, products ...*domain.Product) {
	t.Helper()
	repo := NewProductRepository(testDB)
	for _, p := range products {
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatalf("Failed to seed product %s: %v", p.Name, err)
		}
	}
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, name(item))
	}
	return out
}

func customerName(c *domain.Customer) string { return c.Name }
func productName(p *domain.Product) string   { return p.Name }
