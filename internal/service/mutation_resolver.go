package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"crm-core/internal/domain"
	"crm-core/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxRestockAmount keeps stock + amount within INTEGER for every product below
// the restock threshold
const maxRestockAmount = math.MaxInt32 - domain.RestockThreshold

const (
	MsgCustomerCreated = "Customer created successfully."
	MsgBulkCompleted   = "Bulk customer creation completed."
	MsgProductCreated  = "Product created successfully."
	MsgOrderCreated    = "Order created successfully."
)

// CustomerResult is the outcome of CreateCustomer
type CustomerResult struct {
	Customer *domain.Customer
	Message  string
}

// BulkCustomersResult lists the created customers and one "Row N: ..." entry
// per rejected input row
type BulkCustomersResult struct {
	Customers []*domain.Customer
	Errors    []string
	Message   string
}

type ProductResult struct {
	Product *domain.Product
	Message string
}

type OrderResult struct {
	Order   *domain.Order
	Message string
}

type RestockResult struct {
	Products []*domain.Product
	Message  string
}

// MutationResolver exposes the write operations
type MutationResolver interface {
	CreateCustomer(ctx context.Context, input domain.NewCustomerInput) (*CustomerResult, error)
	BulkCreateCustomers(ctx context.Context, inputs []domain.NewCustomerInput) (*BulkCustomersResult, error)
	CreateProduct(ctx context.Context, input domain.NewProductInput) (*ProductResult, error)
	CreateOrder(ctx context.Context, input domain.NewOrderInput) (*OrderResult, error)
	// UpdateLowStockProducts adds restockAmount (default 10) to every product
	// below the restock threshold. Each call adds again.
	UpdateLowStockProducts(ctx context.Context, restockAmount *int) (*RestockResult, error)
}

type mutationResolver struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewMutationResolver creates a new instance of MutationResolver
func NewMutationResolver(store repository.Store, logger *zap.Logger) MutationResolver {
	return &mutationResolver{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *mutationResolver) CreateCustomer(ctx context.Context, input domain.NewCustomerInput) (*CustomerResult, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}
	if err := validateEmail(input.Email); err != nil {
		return nil, err
	}

	exists, err := m.store.Customers().ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, storeFailure("check customer email", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: Email already exists.", domain.ErrConflict)
	}

	if err := validatePhone(input.Phone); err != nil {
		return nil, err
	}

	customer := m.newCustomer(input)
	if err := m.store.Customers().Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: Email already exists.", domain.ErrConflict)
		}
		return nil, storeFailure("create customer", err)
	}

	return &CustomerResult{Customer: customer, Message: MsgCustomerCreated}, nil
}

// BulkCreateCustomers validates every row first, collecting rejected rows as
// errors, then writes all accepted rows in one transaction. A row whose email
// is registered between the check and the insert is reported like any other
// taken email.
func (m *mutationResolver) BulkCreateCustomers(ctx context.Context, inputs []domain.NewCustomerInput) (*BulkCustomersResult, error) {
	result := &BulkCustomersResult{
		Customers: []*domain.Customer{},
		Errors:    []string{},
		Message:   MsgBulkCompleted,
	}
	rowErrors := make(map[int]string)

	err := m.store.InTx(ctx, func(tx repository.Store) error {
		accepted := make([]*domain.Customer, 0, len(inputs))
		rowOf := make(map[uuid.UUID]int, len(inputs))
		seen := make(map[string]bool, len(inputs))

		for i, input := range inputs {
			rowErr, err := m.checkBulkRow(ctx, tx, input, seen)
			if err != nil {
				return err
			}
			if rowErr != "" {
				rowErrors[i] = rowErr
				continue
			}

			seen[input.Email] = true
			customer := m.newCustomer(input)
			rowOf[customer.ID] = i
			accepted = append(accepted, customer)
		}

		created, err := tx.Customers().CreateBatchSkippingTaken(ctx, accepted)
		if err != nil {
			return err
		}

		inserted := make(map[uuid.UUID]bool, len(created))
		for _, c := range created {
			inserted[c.ID] = true
		}
		for _, c := range accepted {
			if !inserted[c.ID] {
				rowErrors[rowOf[c.ID]] = emailTaken(c.Email)
			}
		}

		result.Customers = created
		return nil
	})
	if err != nil {
		return nil, storeFailure("bulk create customers", err)
	}

	for i := range inputs {
		if msg, ok := rowErrors[i]; ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", i+1, msg))
		}
	}

	m.logger.Info("Bulk customer creation completed",
		zap.Int("created", len(result.Customers)),
		zap.Int("failed", len(result.Errors)),
	)
	return result, nil
}

func emailTaken(email string) string {
	return fmt.Sprintf("Email '%s' already exists.", email)
}

// checkBulkRow returns the rejection message of a row, or "" when the row is
// accepted. A non-nil error means the store failed and the batch must abort.
func (m *mutationResolver) checkBulkRow(ctx context.Context, tx repository.Store, input domain.NewCustomerInput, seen map[string]bool) (string, error) {
	if err := validateName(input.Name); err != nil {
		return domain.Message(err), nil
	}
	if err := validateEmail(input.Email); err != nil {
		return domain.Message(err), nil
	}

	if seen[input.Email] {
		return emailTaken(input.Email), nil
	}
	exists, err := tx.Customers().ExistsByEmail(ctx, input.Email)
	if err != nil {
		return "", err
	}
	if exists {
		return emailTaken(input.Email), nil
	}

	if err := validatePhone(input.Phone); err != nil {
		return domain.Message(err), nil
	}
	return "", nil
}

func (m *mutationResolver) CreateProduct(ctx context.Context, input domain.NewProductInput) (*ProductResult, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	price, err := parsePrice(input.Price)
	if err != nil {
		return nil, err
	}

	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	if stock < 0 {
		return nil, invalid("Stock cannot be negative value.")
	}

	product := &domain.Product{
		ID:        uuid.New(),
		Name:      input.Name,
		Price:     price,
		Stock:     stock,
		CreatedAt: m.now(),
	}

	if err := m.store.Products().Create(ctx, product); err != nil {
		return nil, storeFailure("create product", err)
	}

	return &ProductResult{Product: product, Message: MsgProductCreated}, nil
}

// CreateOrder associates the requested products with the customer and fixes
// the total at the sum of their current prices. Every requested id must
// resolve to a distinct product.
func (m *mutationResolver) CreateOrder(ctx context.Context, input domain.NewOrderInput) (*OrderResult, error) {
	customerID, err := uuid.Parse(input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: Invalid customer ID.", domain.ErrNotFound)
	}

	var order *domain.Order
	err = m.store.InTx(ctx, func(tx repository.Store) error {
		customer, err := tx.Customers().FindByID(ctx, customerID)
		if err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return fmt.Errorf("%w: Invalid customer ID.", domain.ErrNotFound)
			}
			return err
		}

		if len(input.ProductIDs) == 0 {
			return invalid("At least one product must be included in the order.")
		}

		products, err := m.resolveProducts(ctx, tx, input.ProductIDs)
		if err != nil {
			return err
		}

		total := domain.SumPrices(products)
		if total.GreaterThan(maxPrice) {
			return invalid("Order total exceeds the maximum of %s.", maxPrice.StringFixed(priceScale))
		}

		now := m.now()
		orderDate := now
		if input.OrderDate != nil {
			orderDate = input.OrderDate.UTC()
		}

		order = &domain.Order{
			ID:          uuid.New(),
			CustomerID:  customer.ID,
			Customer:    customer,
			Products:    products,
			TotalAmount: total,
			OrderDate:   orderDate,
			CreatedAt:   now,
		}
		return tx.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, storeFailure("create order", err)
	}

	return &OrderResult{Order: order, Message: MsgOrderCreated}, nil
}

// resolveProducts loads the products in the requested order. Duplicate ids
// resolve to fewer products than requested and are rejected like unknown ids.
func (m *mutationResolver) resolveProducts(ctx context.Context, tx repository.Store, rawIDs []string) ([]*domain.Product, error) {
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, invalid("One or more product IDs are invalid.")
		}
		ids = append(ids, id)
	}

	found, err := tx.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(found) != len(ids) {
		return nil, invalid("One or more product IDs are invalid.")
	}

	byID := make(map[uuid.UUID]*domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	products := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, byID[id])
	}
	return products, nil
}

func (m *mutationResolver) UpdateLowStockProducts(ctx context.Context, restockAmount *int) (*RestockResult, error) {
	amount := domain.DefaultRestockAmount
	if restockAmount != nil {
		amount = *restockAmount
	}
	if amount < 0 {
		return nil, invalid("Restock amount cannot be negative.")
	}
	if amount > maxRestockAmount {
		return nil, invalid("Restock amount cannot exceed %d.", maxRestockAmount)
	}

	var updated []*domain.Product
	err := m.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		updated, err = tx.Products().RestockBelow(ctx, domain.RestockThreshold, amount)
		return err
	})
	if err != nil {
		return nil, storeFailure("restock products", err)
	}

	m.logger.Info("Low-stock products restocked",
		zap.Int("count", len(updated)),
		zap.Int("amount", amount),
	)

	return &RestockResult{
		Products: updated,
		Message:  fmt.Sprintf("%d low-stock products updated.", len(updated)),
	}, nil
}

func (m *mutationResolver) newCustomer(input domain.NewCustomerInput) *domain.Customer {
	phone := input.Phone
	if phone != nil && *phone == "" {
		phone = nil
	}
	return &domain.Customer{
		ID:        uuid.New(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     phone,
		CreatedAt: m.now(),
	}
}
