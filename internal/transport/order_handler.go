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

// OrderPayload is the response of an order creation
type OrderPayload struct {
	Order   *domain.Order `json:"order"`
	Message string        `json:"message"`
}

// OrderHandler handles HTTP requests for order operations
type OrderHandler struct {
	queries   service.QueryResolver
	mutations service.MutationResolver
	logger    *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(queries service.QueryResolver, mutations service.MutationResolver, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		queries:   queries,
		mutations: mutations,
		logger:    logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/high-value", h.HighValue)
		r.Post("/", h.Create)
	})
}

// List handles filtered order listings
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	p := newParams(r.URL.Query())
	filter := query.OrderFilter{
		TotalAmountMin: p.amount("total_amount_min"),
		TotalAmountMax: p.amount("total_amount_max"),
		OrderDateFrom:  p.timestamp("order_date_from"),
		OrderDateTo:    p.timestamp("order_date_to"),
		CustomerName:   p.str("customer_name"),
		ProductName:    p.str("product_name"),
		ProductID:      p.id("product_id"),
	}
	orderBy := p.orderBy()
	if p.err != nil {
		middleware.RespondWithDomainError(w, p.err, h.logger)
		return
	}

	orders, err := h.queries.ListOrders(r.Context(), filter, orderBy)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// HighValue handles GET /api/orders/high-value?min_total=
func (h *OrderHandler) HighValue(w http.ResponseWriter, r *http.Request) {
	p := newParams(r.URL.Query())
	minTotal := p.amount("min_total")
	if p.err == nil && minTotal == nil {
		p.fail("min_total", "a decimal number")
	}
	if p.err != nil {
		middleware.RespondWithDomainError(w, p.err, h.logger)
		return
	}

	orders, err := h.queries.HighValueOrders(r.Context(), *minTotal)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, orders)
}

// Create handles order creation
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewOrderInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	result, err := h.mutations.CreateOrder(r.Context(), req)
	if err != nil {
		h.logger.Debug("Order creation rejected", zap.Error(err))
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("Order created",
		zap.String("order_id", result.Order.ID.String()),
		zap.String("total_amount", result.Order.TotalAmount.StringFixed(2)),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, OrderPayload{
		Order:   result.Order,
		Message: result.Message,
	})
}
