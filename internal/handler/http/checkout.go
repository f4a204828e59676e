package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/gateway"
	"github.com/blomcosmetics/storefront/internal/payment"
	"github.com/blomcosmetics/storefront/internal/service"
	"github.com/blomcosmetics/storefront/pkg/httputil"
	"github.com/blomcosmetics/storefront/pkg/middleware"
	"github.com/blomcosmetics/storefront/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout and order endpoints.
type CheckoutHandler struct {
	checkout *service.CheckoutService
	poller   *payment.Poller
	invoices *gateway.InvoiceClient
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(checkout *service.CheckoutService, poller *payment.Poller, invoices *gateway.InvoiceClient, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		poller:   poller,
		invoices: invoices,
		logger:   logger,
	}
}

// ShippingAddressRequest is the shipping destination on a checkout request.
type ShippingAddressRequest struct {
	FullName   string `json:"full_name" validate:"required,min=1,max=200"`
	Line1      string `json:"line1" validate:"required,min=1,max=500"`
	Line2      string `json:"line2"`
	Suburb     string `json:"suburb"`
	City       string `json:"city" validate:"required"`
	Province   string `json:"province" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required,min=4,max=10"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// PlaceOrderRequest is the JSON request body for placing an order.
type PlaceOrderRequest struct {
	Email           string                  `json:"email" validate:"required,email"`
	CouponCode      string                  `json:"coupon_code"`
	ShippingAddress *ShippingAddressRequest `json:"shipping_address"`
	PickupPointID   string                  `json:"pickup_point_id"`
}

// Quote handles GET /api/v1/checkout/quote
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())

	quote, err := h.checkout.QuoteCart(r.Context(), sessionID, r.URL.Query().Get("coupon"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: quote})
}

// PlaceOrder handles POST /api/v1/checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())

	var req PlaceOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.PlaceOrderInput{
		Email:         req.Email,
		UserID:        middleware.UserIDFromContext(r.Context()),
		CouponCode:    req.CouponCode,
		PickupPointID: req.PickupPointID,
	}
	if req.ShippingAddress != nil {
		input.ShippingAddress = &domain.Address{
			FullName:   req.ShippingAddress.FullName,
			Line1:      req.ShippingAddress.Line1,
			Line2:      req.ShippingAddress.Line2,
			Suburb:     req.ShippingAddress.Suburb,
			City:       req.ShippingAddress.City,
			Province:   req.ShippingAddress.Province,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
			Phone:      req.ShippingAddress.Phone,
		}
	}

	order, err := h.checkout.PlaceOrder(r.Context(), sessionID, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())
	userID := middleware.UserIDFromContext(r.Context())

	order, err := h.checkout.GetOrder(r.Context(), chi.URLParam(r, "id"), sessionID, userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// ConfirmPayment handles POST /api/v1/orders/{id}/confirm
//
// The handler blocks while the poller waits on the payment gateway, so the
// route sits behind a generous server timeout.
func (h *CheckoutHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())

	result, err := h.poller.Confirm(r.Context(), chi.URLParam(r, "id"), sessionID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// GetInvoice handles GET /api/v1/orders/{id}/invoice
func (h *CheckoutHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	sessionID := SessionIDFromContext(r.Context())
	userID := middleware.UserIDFromContext(r.Context())
	orderID := chi.URLParam(r, "id")

	// Ownership check before touching the invoice service.
	if _, err := h.checkout.GetOrder(r.Context(), orderID, sessionID, userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	pdf, err := h.invoices.Fetch(r.Context(), orderID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-`+orderID+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
