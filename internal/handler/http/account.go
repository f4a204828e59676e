package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blomcosmetics/storefront/internal/service"
	"github.com/blomcosmetics/storefront/pkg/httputil"
	"github.com/blomcosmetics/storefront/pkg/middleware"
	"github.com/blomcosmetics/storefront/pkg/pagination"
	"github.com/blomcosmetics/storefront/pkg/validator"
)

// AccountHandler handles HTTP requests for authenticated account endpoints.
type AccountHandler struct {
	account *service.AccountService
	logger  *slog.Logger
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(account *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		account: account,
		logger:  logger,
	}
}

// UpdateProfileRequest is the JSON request body for updating the profile.
// Absent fields are left unchanged.
type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name" validate:"omitempty,max=100"`
	LastName       *string `json:"last_name" validate:"omitempty,max=100"`
	Phone          *string `json:"phone" validate:"omitempty,max=30"`
	MarketingOptIn *bool   `json:"marketing_opt_in"`
}

// AddressRequest is the JSON request body for creating or updating a saved address.
type AddressRequest struct {
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

func (req *AddressRequest) toInput() *service.AddressInput {
	return &service.AddressInput{
		FullName:   req.FullName,
		Line1:      req.Line1,
		Line2:      req.Line2,
		Suburb:     req.Suburb,
		City:       req.City,
		Province:   req.Province,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
	}
}

// GetProfile handles GET /api/v1/account/profile
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	email := middleware.EmailFromContext(r.Context())

	profile, err := h.account.GetProfile(r.Context(), userID, email)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: profile})
}

// UpdateProfile handles PUT /api/v1/account/profile
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	email := middleware.EmailFromContext(r.Context())

	var req UpdateProfileRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	profile, err := h.account.UpdateProfile(r.Context(), userID, email, &service.UpdateProfileInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		MarketingOptIn: req.MarketingOptIn,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: profile})
}

// ListAddresses handles GET /api/v1/account/addresses
func (h *AccountHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.account.ListAddresses(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: addresses})
}

// AddAddress handles POST /api/v1/account/addresses
func (h *AccountHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	address, err := h.account.AddAddress(r.Context(), middleware.UserIDFromContext(r.Context()), req.toInput())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: address})
}

// UpdateAddress handles PUT /api/v1/account/addresses/{id}
func (h *AccountHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	address, err := h.account.UpdateAddress(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), req.toInput())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: address})
}

// RemoveAddress handles DELETE /api/v1/account/addresses/{id}
func (h *AccountHandler) RemoveAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.account.RemoveAddress(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetDefaultAddress handles PUT /api/v1/account/addresses/{id}/default
func (h *AccountHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.account.SetDefaultAddress(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListOrders handles GET /api/v1/account/orders
func (h *AccountHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	orders, total, err := h.account.ListOrders(r.Context(), middleware.UserIDFromContext(r.Context()), params.PerPage, params.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(orders, int(total), params),
	})
}
