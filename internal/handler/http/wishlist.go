package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/store"
	"github.com/blomcosmetics/storefront/pkg/httputil"
	"github.com/blomcosmetics/storefront/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	wishlists *store.WishlistStore
	logger    *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(wishlists *store.WishlistStore, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlists: wishlists,
		logger:    logger,
	}
}

// WishlistResponse is the JSON body for wishlist reads and mutations.
type WishlistResponse struct {
	Items []domain.WishlistItem `json:"items"`
	Count int                   `json:"count"`
}

// ToggleResponse reports the state of a product after a toggle or
// membership check.
type ToggleResponse struct {
	ProductID string `json:"product_id"`
	Saved     bool   `json:"saved"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())

	items, err := h.wishlists.Items(r.Context(), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: WishlistResponse{Items: items, Count: len(items)},
	})
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())

	var req store.WishlistItemInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if _, err := h.wishlists.Add(r.Context(), sessionID, req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: ToggleResponse{ProductID: req.ProductID, Saved: true},
	})
}

// ToggleItem handles POST /api/v1/wishlist/toggle
func (h *WishlistHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())

	var req store.WishlistItemInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	saved, err := h.wishlists.Toggle(r.Context(), sessionID, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: ToggleResponse{ProductID: req.ProductID, Saved: saved},
	})
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())
	productID := chi.URLParam(r, "productId")

	if _, err := h.wishlists.Remove(r.Context(), sessionID, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: ToggleResponse{ProductID: productID, Saved: false},
	})
}

// ContainsItem handles GET /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) ContainsItem(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())
	productID := chi.URLParam(r, "productId")

	saved, err := h.wishlists.Contains(r.Context(), sessionID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: ToggleResponse{ProductID: productID, Saved: saved},
	})
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())

	if err := h.wishlists.Clear(r.Context(), sessionID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: WishlistResponse{Items: []domain.WishlistItem{}, Count: 0},
	})
}
