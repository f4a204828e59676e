package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cartWith(items ...CartItem) *Cart {
	c := &Cart{ID: "c-1", SessionID: "sess-1", Items: items, Currency: "ZAR"}
	c.RecalculateTotals()
	return c
}

func TestRecalculateTotals_EmptyCart(t *testing.T) {
	c := cartWith()

	assert.Zero(t, c.SubtotalAmount)
	assert.Zero(t, c.ShippingAmount)
	assert.Zero(t, c.VATAmount)
	assert.Zero(t, c.TotalAmount)
}

func TestRecalculateTotals_BelowFreeShippingThreshold(t *testing.T) {
	c := cartWith(CartItem{ID: "i-1", ProductID: "p-1", Price: 300_00, Quantity: 1})

	assert.Equal(t, int64(300_00), c.SubtotalAmount)
	assert.Equal(t, ShippingFee, c.ShippingAmount)
	// 15% of R399.00 is R59.85.
	assert.Equal(t, int64(59_85), c.VATAmount)
	assert.Equal(t, int64(458_85), c.TotalAmount)
}

func TestRecalculateTotals_AtFreeShippingThreshold(t *testing.T) {
	c := cartWith(CartItem{ID: "i-1", ProductID: "p-1", Price: FreeShippingThreshold, Quantity: 1})

	assert.Zero(t, c.ShippingAmount)
}

func TestRecalculateTotals_AboveFreeShippingThreshold(t *testing.T) {
	c := cartWith(CartItem{ID: "i-1", ProductID: "p-1", Price: 950_00, Quantity: 2})

	assert.Equal(t, int64(1900_00), c.SubtotalAmount)
	assert.Zero(t, c.ShippingAmount)
	assert.Equal(t, int64(285_00), c.VATAmount)
	assert.Equal(t, int64(2185_00), c.TotalAmount)
}

func TestVATOn_RoundsHalfUp(t *testing.T) {
	// 15% of 103 cents is 15.45, rounds down to 15.
	assert.Equal(t, int64(15), VATOn(103))
	// 15% of 110 cents is 16.5, rounds up to 17.
	assert.Equal(t, int64(17), VATOn(110))
	assert.Zero(t, VATOn(0))
}

func TestItemCount(t *testing.T) {
	c := cartWith(
		CartItem{ID: "i-1", ProductID: "p-1", Price: 100, Quantity: 2},
		CartItem{ID: "i-2", ProductID: "p-2", Price: 100, Quantity: 3},
	)

	assert.Equal(t, 5, c.ItemCount())
}

func TestFindItemIndex_MatchesProductAndVariant(t *testing.T) {
	c := cartWith(
		CartItem{ID: "i-1", ProductID: "p-1", VariantID: "v-1", Price: 100, Quantity: 1},
		CartItem{ID: "i-2", ProductID: "p-1", VariantID: "v-2", Price: 100, Quantity: 1},
	)

	assert.Equal(t, 1, c.FindItemIndex("p-1", "v-2"))
	assert.Equal(t, -1, c.FindItemIndex("p-1", "v-3"))
}

func TestClone_DoesNotAliasItems(t *testing.T) {
	c := cartWith(CartItem{ID: "i-1", ProductID: "p-1", Price: 100, Quantity: 1, Variant: &Variant{Title: "Nude"}})

	cp := c.Clone()
	cp.Items[0].Quantity = 9
	cp.Items[0].Variant.Title = "Rose"

	assert.Equal(t, 1, c.Items[0].Quantity)
	assert.Equal(t, "Nude", c.Items[0].Variant.Title)
}
