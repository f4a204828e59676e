package domain

import "time"

// Coupon discount type constants.
const (
	CouponTypePercent = "percent"
	CouponTypeFixed   = "fixed"
)

// Coupon is a discount code applied at checkout.
type Coupon struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Type        string     `json:"type"`
	Value       int64      `json:"value"` // percent (0-100) or fixed cents
	MinSubtotal int64      `json:"min_subtotal"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsRedeemableAt reports whether the coupon can be applied at the given time
// for the given subtotal.
func (c *Coupon) IsRedeemableAt(t time.Time, subtotal int64) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && t.After(*c.ExpiresAt) {
		return false
	}
	return subtotal >= c.MinSubtotal
}

// Discount returns the discount in cents for the given subtotal. The result
// never exceeds the subtotal.
func (c *Coupon) Discount(subtotal int64) int64 {
	var d int64
	switch c.Type {
	case CouponTypePercent:
		d = roundHalfUpPercent(subtotal, c.Value)
	case CouponTypeFixed:
		d = c.Value
	}
	if d > subtotal {
		d = subtotal
	}
	return d
}
