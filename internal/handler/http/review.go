package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/service"
	"github.com/blomcosmetics/storefront/pkg/httputil"
	"github.com/blomcosmetics/storefront/pkg/middleware"
	"github.com/blomcosmetics/storefront/pkg/pagination"
	"github.com/blomcosmetics/storefront/pkg/validator"
)

// ReviewHandler handles HTTP requests for product review endpoints.
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// SubmitReviewRequest is the JSON request body for submitting a review.
type SubmitReviewRequest struct {
	Author string `json:"author" validate:"required,min=1,max=100"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title  string `json:"title" validate:"max=200"`
	Body   string `json:"body" validate:"required,min=1,max=4000"`
}

// ReviewListResponse is the JSON body for a product's review page.
type ReviewListResponse struct {
	Reviews    []*domain.Review      `json:"reviews"`
	Summary    *domain.ReviewSummary `json:"summary"`
	TotalCount int64                 `json:"total_count"`
	Page       int                   `json:"page"`
	PerPage    int                   `json:"per_page"`
}

// SubmitReview handles POST /api/v1/products/{id}/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.reviews.SubmitReview(r.Context(), &service.SubmitReviewInput{
		ProductID: chi.URLParam(r, "id"),
		UserID:    middleware.UserIDFromContext(r.Context()),
		Author:    req.Author,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// ListReviews handles GET /api/v1/products/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	reviews, summary, total, err := h.reviews.ListReviews(r.Context(), chi.URLParam(r, "id"), params.PerPage, params.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: ReviewListResponse{
			Reviews:    reviews,
			Summary:    summary,
			TotalCount: total,
			Page:       params.Page,
			PerPage:    params.PerPage,
		},
	})
}
