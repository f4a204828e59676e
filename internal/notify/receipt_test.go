package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blomcosmetics/storefront/internal/domain"
)

func TestShortOrderRef(t *testing.T) {
	assert.Equal(t, "#9B2D8A1F", shortOrderRef("9b2d8a1f-68a1-4c5e-9f2a-1e8c7d6b5a4f"))
	assert.Equal(t, "#AB12", shortOrderRef("ab12"))
}

func TestFormatRand(t *testing.T) {
	assert.Equal(t, "R99.00", formatRand(99_00))
	assert.Equal(t, "R1900.50", formatRand(1900_50))
	assert.Equal(t, "R0.05", formatRand(5))
}

func TestReceiptHTML_IncludesTotalsAndDiscount(t *testing.T) {
	order := &domain.Order{
		ID:             "9b2d8a1f-68a1-4c5e-9f2a-1e8c7d6b5a4f",
		CouponCode:     "BLOM10",
		SubtotalAmount: 2000_00,
		DiscountAmount: 200_00,
		VATAmount:      270_00,
		TotalAmount:    2070_00,
		Items: []domain.OrderItem{
			{Name: "Gel Polish Rose", Price: 1000_00, Quantity: 2},
		},
	}

	html := receiptHTML(order)
	assert.Contains(t, html, "Gel Polish Rose")
	assert.Contains(t, html, "R2000.00")
	assert.Contains(t, html, "BLOM10")
	assert.Contains(t, html, "R2070.00")
}
