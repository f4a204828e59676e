package domain

import "time"

// Pricing rules for the storefront. All amounts are in cents (ZAR).
const (
	// FreeShippingThreshold is the subtotal at or above which shipping is free.
	FreeShippingThreshold int64 = 1000_00
	// ShippingFee is the flat courier fee below the free-shipping threshold.
	ShippingFee int64 = 99_00
	// VATRatePercent is the South African VAT rate applied to subtotal + shipping.
	VATRatePercent int64 = 15
)

// Cart holds a shopper's line items for the current session. Totals are
// always a pure function of the items and are recomputed after every mutation.
type Cart struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"session_id"`
	Items          []CartItem `json:"items"`
	SubtotalAmount int64      `json:"subtotal_amount"`
	ShippingAmount int64      `json:"shipping_amount"`
	VATAmount      int64      `json:"vat_amount"`
	TotalAmount    int64      `json:"total_amount"`
	Currency       string     `json:"currency"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CartItem is a single product/variant line in the cart.
type CartItem struct {
	ID        string   `json:"id"`
	ProductID string   `json:"product_id"`
	VariantID string   `json:"variant_id,omitempty"`
	Name      string   `json:"name"`
	Price     int64    `json:"price"`
	Quantity  int      `json:"quantity"`
	ImageURL  string   `json:"image_url,omitempty"`
	Variant   *Variant `json:"variant,omitempty"`
}

// Variant describes the selected variant on a cart line: a display title and
// up to three option strings (e.g. shade, size, finish).
type Variant struct {
	Title   string `json:"title"`
	Option1 string `json:"option1,omitempty"`
	Option2 string `json:"option2,omitempty"`
	Option3 string `json:"option3,omitempty"`
}

// Key returns the merge key for the item. Items with the same product and
// variant merge into one line on add.
func (i CartItem) Key() string {
	return i.ProductID + "/" + i.VariantID
}

// FindItemIndex returns the index of the item matching the given product and
// variant IDs, or -1.
func (c *Cart) FindItemIndex(productID, variantID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// FindItemByID returns the index of the item with the given line ID, or -1.
func (c *Cart) FindItemByID(itemID string) int {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// ItemCount returns the total quantity across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// RecalculateTotals recomputes subtotal, shipping, VAT, and total from the
// current items. Shipping is free at or above FreeShippingThreshold. VAT is
// VATRatePercent of (subtotal + shipping), rounded half-up on cents.
func (c *Cart) RecalculateTotals() {
	var subtotal int64
	for _, item := range c.Items {
		subtotal += item.Price * int64(item.Quantity)
	}

	shipping := ShippingFee
	if len(c.Items) == 0 || subtotal >= FreeShippingThreshold {
		shipping = 0
	}

	vat := roundHalfUpPercent(subtotal+shipping, VATRatePercent)

	c.SubtotalAmount = subtotal
	c.ShippingAmount = shipping
	c.VATAmount = vat
	c.TotalAmount = subtotal + shipping + vat
}

// Clone returns a deep copy. Snapshots handed to callers must not alias the
// store's internal state.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	for i, item := range c.Items {
		if item.Variant != nil {
			v := *item.Variant
			cp.Items[i].Variant = &v
		}
	}
	return &cp
}

// VATOn returns the VAT due on the given amount.
func VATOn(amount int64) int64 {
	return roundHalfUpPercent(amount, VATRatePercent)
}

// roundHalfUpPercent computes pct% of amount in cents, rounding half-up.
func roundHalfUpPercent(amount, pct int64) int64 {
	return (amount*pct + 50) / 100
}
