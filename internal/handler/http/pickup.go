package http

import (
	"log/slog"
	"net/http"

	"github.com/blomcosmetics/storefront/internal/gateway"
	"github.com/blomcosmetics/storefront/pkg/httputil"
)

// PickupHandler handles HTTP requests for courier pickup points and address
// autocomplete at checkout.
type PickupHandler struct {
	pickups   *gateway.PickupClient
	addresses *gateway.AddressClient
	logger    *slog.Logger
}

// NewPickupHandler creates a new pickup HTTP handler.
func NewPickupHandler(pickups *gateway.PickupClient, addresses *gateway.AddressClient, logger *slog.Logger) *PickupHandler {
	return &PickupHandler{
		pickups:   pickups,
		addresses: addresses,
		logger:    logger,
	}
}

// ListPickupPoints handles GET /api/v1/pickup-points
func (h *PickupHandler) ListPickupPoints(w http.ResponseWriter, r *http.Request) {
	points, err := h.pickups.ListPickupPoints(r.Context(), r.URL.Query().Get("province"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: points})
}

// CompleteAddress handles GET /api/v1/address/complete
func (h *PickupHandler) CompleteAddress(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.addresses.Complete(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: suggestions})
}
