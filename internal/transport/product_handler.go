package transport

import (
	"errors"
	"io"
	"net/http"

	"crm-core/internal/domain"
	"crm-core/internal/middleware"
	"crm-core/internal/query"
	"crm-core/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductPayload is the response of a product creation
type ProductPayload struct {
	Product *domain.Product `json:"product"`
	Message string          `json:"message"`
}

// RestockRequest is the optional body of POST /api/products/restock
type RestockRequest struct {
	RestockAmount *int `json:"restock_amount" validate:"omitempty,gte=0"`
}

// RestockPayload lists the restocked products
type RestockPayload struct {
	Products []*domain.Product `json:"products"`
	Message  string            `json:"message"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	queries   service.QueryResolver
	mutations service.MutationResolver
	logger    *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(queries service.QueryResolver, mutations service.MutationResolver, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		queries:   queries,
		mutations: mutations,
		logger:    logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/search", h.Search)
		r.Get("/price-range", h.PriceRange)
		r.Post("/", h.Create)
		r.Post("/restock", h.Restock)
	})
}

// List handles filtered product listings
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	p := newParams(r.URL.Query())
	filter := query.ProductFilter{
		Name:     p.str("name"),
		PriceMin: p.amount("price_min"),
		PriceMax: p.amount("price_max"),
		StockMin: p.integer("stock_min"),
		StockMax: p.integer("stock_max"),
		LowStock: p.boolean("low_stock"),
	}
	orderBy := p.orderBy()
	if p.err != nil {
		middleware.RespondWithDomainError(w, p.err, h.logger)
		return
	}

	products, err := h.queries.ListProducts(r.Context(), filter, orderBy)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Search handles GET /api/products/search?q=
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// PriceRange handles GET /api/products/price-range?min=&max=
func (h *ProductHandler) PriceRange(w http.ResponseWriter, r *http.Request) {
	p := newParams(r.URL.Query())
	min, max := p.amount("min"), p.amount("max")
	if p.err != nil {
		middleware.RespondWithDomainError(w, p.err, h.logger)
		return
	}

	products, err := h.queries.ProductsByPriceRange(r.Context(), min, max)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NewProductInput
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithRequestError(w, err)
		return
	}

	result, err := h.mutations.CreateProduct(r.Context(), req)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", result.Product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, ProductPayload{
		Product: result.Product,
		Message: result.Message,
	})
}

// Restock adds stock to every low-stock product. An empty body uses the
// default amount.
func (h *ProductHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req RestockRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.RespondWithRequestError(w, err)
		return
	}

	result, err := h.mutations.UpdateLowStockProducts(r.Context(), req.RestockAmount)
	if err != nil {
		middleware.RespondWithDomainError(w, err, h.logger)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, RestockPayload{
		Products: result.Products,
		Message:  result.Message,
	})
}
