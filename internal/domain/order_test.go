package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsSettled(t *testing.T) {
	cases := []struct {
		name          string
		status        string
		paymentStatus string
		want          bool
	}{
		{"both pending", "pending", "pending", false},
		{"status paid", "paid", "pending", true},
		{"payment status paid", "pending", "paid", true},
		{"status complete", "complete", "pending", true},
		{"uppercase from gateway", "pending", "PAID", true},
		{"mixed case", "Complete", "pending", true},
		{"payment failed", "pending", "failed", false},
		{"cancelled", "cancelled", "pending", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &Order{Status: tc.status, PaymentStatus: tc.paymentStatus}
			assert.Equal(t, tc.want, o.IsSettled())
		})
	}
}

func TestCouponIsRedeemableAt(t *testing.T) {
	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	active := &Coupon{Code: "BLOM10", Type: CouponTypePercent, Value: 10, IsActive: true}
	assert.True(t, active.IsRedeemableAt(now, 500_00))

	inactive := &Coupon{Code: "OLD", IsActive: false}
	assert.False(t, inactive.IsRedeemableAt(now, 500_00))

	expired := &Coupon{Code: "EXP", IsActive: true, ExpiresAt: &yesterday}
	assert.False(t, expired.IsRedeemableAt(now, 500_00))

	live := &Coupon{Code: "LIVE", IsActive: true, ExpiresAt: &tomorrow}
	assert.True(t, live.IsRedeemableAt(now, 500_00))

	minimum := &Coupon{Code: "BIG", IsActive: true, MinSubtotal: 1000_00}
	assert.False(t, minimum.IsRedeemableAt(now, 999_99))
	assert.True(t, minimum.IsRedeemableAt(now, 1000_00))
}

func TestCouponDiscount(t *testing.T) {
	percent := &Coupon{Type: CouponTypePercent, Value: 10}
	assert.Equal(t, int64(200_00), percent.Discount(2000_00))

	// Half-up rounding on cents: 10% of 105 cents is 10.5, rounds to 11.
	assert.Equal(t, int64(11), percent.Discount(105))

	fixed := &Coupon{Type: CouponTypeFixed, Value: 50_00}
	assert.Equal(t, int64(50_00), fixed.Discount(2000_00))

	// A fixed discount never exceeds the subtotal.
	assert.Equal(t, int64(30_00), fixed.Discount(30_00))
}
