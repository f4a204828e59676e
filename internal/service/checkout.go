package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/event"
	"github.com/blomcosmetics/storefront/internal/repository"
	"github.com/blomcosmetics/storefront/internal/store"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

// CheckoutService turns a session's cart into a pending order. The cart
// itself stays intact until the payment gateway settles the order.
type CheckoutService struct {
	carts    *store.CartStore
	orders   repository.OrderRepository
	coupons  repository.CouponRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(carts *store.CartStore, orders repository.OrderRepository, coupons repository.CouponRepository, producer *event.Producer, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		orders:   orders,
		coupons:  coupons,
		producer: producer,
		logger:   logger,
	}
}

// PlaceOrderInput holds the parameters for placing an order.
type PlaceOrderInput struct {
	Email           string
	UserID          string
	CouponCode      string
	ShippingAddress *domain.Address
	PickupPointID   string
}

// Quote is a checkout totals preview, recomputed server side so a stale cart
// page can never fix prices.
type Quote struct {
	SubtotalAmount int64  `json:"subtotal_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	ShippingAmount int64  `json:"shipping_amount"`
	VATAmount      int64  `json:"vat_amount"`
	TotalAmount    int64  `json:"total_amount"`
	Currency       string `json:"currency"`
	CouponCode     string `json:"coupon_code,omitempty"`
}

// QuoteCart prices the session's cart with an optional coupon applied.
func (s *CheckoutService) QuoteCart(ctx context.Context, sessionID, couponCode string) (*Quote, error) {
	cart, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("snapshot cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	coupon, err := s.resolveCoupon(ctx, couponCode, cart.SubtotalAmount)
	if err != nil {
		return nil, err
	}

	return priceCart(cart, coupon), nil
}

// PlaceOrder creates a pending order from the session's cart. The shopper is
// then redirected to the payment gateway; the cart is cleared only once the
// confirmation poller sees the order settle.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID string, input *PlaceOrderInput) (*domain.Order, error) {
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, apperrors.InvalidInput("a valid email address is required")
	}
	if input.ShippingAddress == nil && input.PickupPointID == "" {
		return nil, apperrors.InvalidInput("a shipping address or pickup point is required")
	}

	cart, err := s.carts.Snapshot(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("snapshot cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	coupon, err := s.resolveCoupon(ctx, input.CouponCode, cart.SubtotalAmount)
	if err != nil {
		return nil, err
	}
	quote := priceCart(cart, coupon)

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.New().String(),
		SessionID:       sessionID,
		UserID:          input.UserID,
		Email:           strings.ToLower(input.Email),
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		SubtotalAmount:  quote.SubtotalAmount,
		DiscountAmount:  quote.DiscountAmount,
		ShippingAmount:  quote.ShippingAmount,
		VATAmount:       quote.VATAmount,
		TotalAmount:     quote.TotalAmount,
		Currency:        quote.Currency,
		CouponCode:      quote.CouponCode,
		ShippingAddress: input.ShippingAddress,
		PickupPointID:   input.PickupPointID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, item := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if coupon != nil {
		if err := s.coupons.IncrementRedemptions(ctx, coupon.Code); err != nil {
			s.logger.WarnContext(ctx, "increment coupon redemptions failed",
				slog.String("coupon_code", coupon.Code),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("session_id", sessionID),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// GetOrder retrieves an order for the confirmation page. Guests may only see
// orders placed in their own session.
func (s *CheckoutService) GetOrder(ctx context.Context, id, sessionID, userID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if userID != "" && order.UserID == userID {
		return order, nil
	}
	if order.SessionID != "" && order.SessionID == sessionID {
		return order, nil
	}
	return nil, apperrors.NotFound("order", id)
}

// resolveCoupon validates a coupon code against the cart subtotal. An empty
// code resolves to no coupon.
func (s *CheckoutService) resolveCoupon(ctx context.Context, code string, subtotal int64) (*domain.Coupon, error) {
	if code == "" {
		return nil, nil
	}

	coupon, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("coupon %q is not valid", code))
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if !coupon.IsRedeemableAt(time.Now().UTC(), subtotal) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("coupon %q cannot be applied to this cart", code))
	}

	return coupon, nil
}

// priceCart computes order totals. The discount comes off the subtotal
// first; the free shipping threshold and VAT are then evaluated against what
// the shopper actually pays for goods.
func priceCart(cart *domain.Cart, coupon *domain.Coupon) *Quote {
	quote := &Quote{
		SubtotalAmount: cart.SubtotalAmount,
		Currency:       cart.Currency,
	}

	discounted := cart.SubtotalAmount
	if coupon != nil {
		quote.DiscountAmount = coupon.Discount(cart.SubtotalAmount)
		quote.CouponCode = coupon.Code
		discounted -= quote.DiscountAmount
	}

	if discounted < domain.FreeShippingThreshold {
		quote.ShippingAmount = domain.ShippingFee
	}
	quote.VATAmount = domain.VATOn(discounted + quote.ShippingAmount)
	quote.TotalAmount = discounted + quote.ShippingAmount + quote.VATAmount

	return quote
}
