package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/blomcosmetics/storefront/internal/repository"
	"github.com/blomcosmetics/storefront/internal/search"
	"github.com/blomcosmetics/storefront/internal/service"
	"github.com/blomcosmetics/storefront/pkg/httputil"
	"github.com/blomcosmetics/storefront/pkg/pagination"
	"github.com/blomcosmetics/storefront/pkg/validator"
)

// CatalogHandler handles HTTP requests for product catalog endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(catalog *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name           string   `json:"name" validate:"required,min=1,max=500"`
	Description    string   `json:"description"`
	CategoryID     *string  `json:"category_id"`
	BrandID        *string  `json:"brand_id"`
	BasePrice      int64    `json:"base_price" validate:"required,gte=0"`
	CompareAtPrice *int64   `json:"compare_at_price"`
	Currency       string   `json:"currency" validate:"required,len=3"`
	ImageURL       string   `json:"image_url"`
	Tags           []string `json:"tags"`
}

// UpdateProductRequest is the JSON request body for updating a product.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name           *string  `json:"name" validate:"omitempty,min=1,max=500"`
	Description    *string  `json:"description"`
	CategoryID     *string  `json:"category_id"`
	BrandID        *string  `json:"brand_id"`
	Status         *string  `json:"status"`
	BasePrice      *int64   `json:"base_price" validate:"omitempty,gte=0"`
	CompareAtPrice *int64   `json:"compare_at_price"`
	ImageURL       *string  `json:"image_url"`
	Tags           []string `json:"tags"`
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	q := r.URL.Query()

	filter := repository.ProductFilter{
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		Search:   q.Get("q"),
		MinPrice: parsePriceValue(q.Get("min_price")),
		MaxPrice: parsePriceValue(q.Get("max_price")),
	}

	products, total, err := h.catalog.ListProducts(r.Context(), filter, params.PerPage, params.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(products, int(total), params),
	})
}

// GetProductBySlug handles GET /api/v1/products/{slug}
func (h *CatalogHandler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// ListBundles handles GET /api/v1/bundles
func (h *CatalogHandler) ListBundles(w http.ResponseWriter, r *http.Request) {
	bundles, err := h.catalog.ListBundles(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: bundles})
}

// SearchProducts handles GET /api/v1/search
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	q := r.URL.Query()

	query := &search.Query{
		Term:     q.Get("q"),
		Category: q.Get("category"),
		Brand:    q.Get("brand"),
		MinPrice: parsePriceParam(q.Get("min_price")),
		MaxPrice: parsePriceParam(q.Get("max_price")),
		SortBy:   q.Get("sort"),
		Page:     params.Page,
		PerPage:  params.PerPage,
	}

	result, err := h.catalog.SearchProducts(r.Context(), query)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// Suggest handles GET /api/v1/search/suggest
func (h *CatalogHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 25 {
		limit = v
	}

	suggestions, err := h.catalog.Suggest(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: suggestions})
}

// CreateProduct handles POST /api/v1/admin/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), &service.CreateProductInput{
		Name:           req.Name,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		BrandID:        req.BrandID,
		BasePrice:      req.BasePrice,
		CompareAtPrice: req.CompareAtPrice,
		Currency:       req.Currency,
		ImageURL:       req.ImageURL,
		Tags:           req.Tags,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), &service.UpdateProductInput{
		Name:           req.Name,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		BrandID:        req.BrandID,
		Status:         req.Status,
		BasePrice:      req.BasePrice,
		CompareAtPrice: req.CompareAtPrice,
		ImageURL:       req.ImageURL,
		Tags:           req.Tags,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// ArchiveProduct handles DELETE /api/v1/admin/products/{id}
func (h *CatalogHandler) ArchiveProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.ArchiveProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parsePriceParam(raw string) *int64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// parsePriceValue is the zero-default variant used by the catalog filter,
// where zero means "no bound".
func parsePriceValue(raw string) int64 {
	if p := parsePriceParam(raw); p != nil {
		return *p
	}
	return 0
}
