package domain

import "time"

// WishlistItem is a product saved for later, independent of the cart.
// At most one entry exists per product reference.
type WishlistItem struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	ImageURL  string    `json:"image_url,omitempty"`
	Slug      string    `json:"slug"`
	AddedAt   time.Time `json:"added_at"`
}

// Wishlist holds a session's saved products.
type Wishlist struct {
	SessionID string         `json:"session_id"`
	Items     []WishlistItem `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FindItemIndex returns the index of the entry for the given product, or -1.
func (w *Wishlist) FindItemIndex(productID string) int {
	for i := range w.Items {
		if w.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the wishlist.
func (w *Wishlist) Clone() *Wishlist {
	cp := *w
	cp.Items = make([]WishlistItem, len(w.Items))
	copy(cp.Items, w.Items)
	return &cp
}
