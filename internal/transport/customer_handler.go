package transport

import (
	"net/http"

	"crm-core/internal/domain"
	"crm-core/internal/middleware"
	"crm-core/internal/query"
	"crm-core/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CustomerPayload is the response of a single customer creation
type CustomerPayload struct {
	Customer *domain.Customer `json:"customer"`
	Message  string           `json:"message"`
}

// BulkCustomersRequest carries the rows of a bulk import
type BulkCustomersRequest struct {
	Customers []domain.NewCustomerInput `json:"customers" validate:"required"`
}

// BulkCustomersPayload reports created customers and rejected rows
type BulkCustomersPayload struct {
	Customers []*domain.Customer `json:"customers"`
	Errors    []string           `json:"errors"`
	Message   string             `json:"message"`
}

// CustomerHandler handles HTTP requests for customer operations
type CustomerHandler struct {
	queries   service.QueryResolver
	mutations service.MutationResolver
	logger    *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(queries service.QueryResolver, mutations service.MutationResolver, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		queries:   queries,
		mutations: mutations,
		logger:    logger,
	}
}

// RegisterRoutes registers all customer routes
func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Get("/{id}/orders", h.Orders)
		r.Post("/", h.Create)
		r.Post("/bulk", h.BulkCreate)
	})
}

// List handles filtered customer listings
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	p := newParams(r.URL.Query())
	filter := query.CustomerFilter{
		Name:          p.str("name"),
		Email:         p.str("email"),
		CreatedAtFrom: p.timestamp("created_at_from"),
		CreatedAtTo:   p.timestamp("created_at_to"),
		PhonePrefix:   p.str("phone_prefix"),
	}
	orderBy := p.orderBy()
	if p.err != nil {
		middleware.RespondWithDomainError(w, p.err, h.logger)
		return
	}

	customers, err := h.queries.ListCustomers(r.Context(), filter, orderBy)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

// Search handles GET /api/customers/search?q=
func (h *CustomerHandler) Search(w http.ResponseWriter, r *http.Request) {
	customers, err := h.queries.SearchCustomers(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, customers)
}

// Orders lists the orders of one customer
func (h *CustomerHandler) Orders(w http.ResponseWriter, r *http.Request) {
	var status *string
	if r.URL.Query().Has("status") {
		s := r.URL.Query().Get("status")
		status = &s
	}

	orders, err := h.queries.OrdersForCustomer(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Create handles customer creation
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewCustomerInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Customer validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	result, err := h.mutations.CreateCustomer(r.Context(), req)
	if err != nil {
		h.logger.Debug("Customer creation rejected", zap.Error(err))
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("Customer created", zap.String("customer_id", result.Customer.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, CustomerPayload{
		Customer: result.Customer,
		Message:  result.Message,
	})
}

// BulkCreate imports many customers at once. Rejected rows are reported in
// the payload and do not fail the request.
func (h *CustomerHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req BulkCustomersRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithRequestError(w, err)
		return
	}

	result, err := h.mutations.BulkCreateCustomers(r.Context(), req.Customers)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, BulkCustomersPayload{
		Customers: result.Customers,
		Errors:    result.Errors,
		Message:   result.Message,
	})
}
