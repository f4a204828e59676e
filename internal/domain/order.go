package domain

import (
	"strings"
	"time"
)

// Order status constants.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusComplete  = "complete"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

// Payment status constants, written by the gateway webhook.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Order represents a customer order awaiting or past settlement.
type Order struct {
	ID              string      `json:"id"`
	SessionID       string      `json:"session_id"`
	UserID          string      `json:"user_id,omitempty"`
	Email           string      `json:"email"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	Items           []OrderItem `json:"items"`
	SubtotalAmount  int64       `json:"subtotal_amount"`
	DiscountAmount  int64       `json:"discount_amount"`
	ShippingAmount  int64       `json:"shipping_amount"`
	VATAmount       int64       `json:"vat_amount"`
	TotalAmount     int64       `json:"total_amount"`
	Currency        string      `json:"currency"`
	CouponCode      string      `json:"coupon_code,omitempty"`
	ShippingAddress *Address    `json:"shipping_address,omitempty"`
	PickupPointID   string      `json:"pickup_point_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem is a single purchased line.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// settledValues is the canonical settlement acceptance set. The gateway
// writes either field depending on webhook timing, so both are checked.
var settledValues = map[string]struct{}{
	OrderStatusPaid:     {},
	OrderStatusComplete: {},
}

// IsSettled reports whether the payment gateway has confirmed funds captured
// for this order. Matching is case-insensitive on both the order status and
// the payment status.
func (o *Order) IsSettled() bool {
	if _, ok := settledValues[strings.ToLower(o.Status)]; ok {
		return true
	}
	_, ok := settledValues[strings.ToLower(o.PaymentStatus)]
	return ok
}

// ValidOrderStatuses returns all valid order statuses.
func ValidOrderStatuses() []string {
	return []string{
		OrderStatusPending,
		OrderStatusPaid,
		OrderStatusComplete,
		OrderStatusCancelled,
		OrderStatusRefunded,
	}
}

// IsValidOrderStatus checks whether the given status is valid.
func IsValidOrderStatus(status string) bool {
	for _, s := range ValidOrderStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
