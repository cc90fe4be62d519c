package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crm-core/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes mapped onto domain errors
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Store is the entity store. Repositories obtained from the Store passed to an
// InTx callback share that transaction.
type Store interface {
	Customers() CustomerRepository
	Products() ProductRepository
	Orders() OrderRepository

	// InTx runs fn in one transaction. Any error returned by fn rolls back every
	// write made through the transactional store.
	InTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
}

type sqlStore struct {
	db *sql.DB
	q  DBTX
	tx bool
}

// NewStore creates a Store backed by db
func NewStore(db *sql.DB) Store {
	return &sqlStore{db: db, q: db}
}

func (s *sqlStore) Customers() CustomerRepository { return &customerRepository{db: s.q} }
func (s *sqlStore) Products() ProductRepository   { return &productRepository{db: s.q} }
func (s *sqlStore) Orders() OrderRepository       { return &orderRepository{db: s.q} }

func (s *sqlStore) InTx(ctx context.Context, fn func(tx Store) error) (err error) {
	// Already inside a transaction: join it
	if s.tx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(&sqlStore{db: s.db, q: tx, tx: true}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	var one int
	if err := s.q.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("failed to ping store: %w", err)
	}
	return nil
}

// pgCode returns the SQLSTATE of a Postgres error, or "" for other errors
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

var (
	ErrCustomerNotFound = fmt.Errorf("customer %w", domain.ErrNotFound)
	ErrEmailTaken       = fmt.Errorf("%w: email already exists", domain.ErrConflict)
	ErrProductNotFound  = fmt.Errorf("product %w", domain.ErrNotFound)
)
