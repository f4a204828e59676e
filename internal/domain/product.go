package domain

import "time"

// Product status constants.
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
	ProductStatusArchived  = "archived"
)

// Product represents a catalog product.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	// DescriptionHTML is rendered from the markdown Description at read time.
	DescriptionHTML string    `json:"description_html,omitempty"`
	CategoryID      *string   `json:"category_id,omitempty"`
	BrandID         *string   `json:"brand_id,omitempty"`
	Status          string    `json:"status"`
	BasePrice       int64     `json:"base_price"`
	CompareAtPrice  *int64    `json:"compare_at_price,omitempty"`
	Currency        string    `json:"currency"`
	ImageURL        string    `json:"image_url,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProductVariant is a purchasable variation of a product (shade, size, kit).
type ProductVariant struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku"`
	Title     string    `json:"title"`
	Option1   string    `json:"option1,omitempty"`
	Option2   string    `json:"option2,omitempty"`
	Option3   string    `json:"option3,omitempty"`
	Price     *int64    `json:"price,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductImage is an image attached to a product.
type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	URL       string `json:"url"`
	AltText   string `json:"alt_text,omitempty"`
	SortOrder int    `json:"sort_order"`
	IsPrimary bool   `json:"is_primary"`
}

// ProductDetail is a product with its variants and images, as served on the
// product page.
type ProductDetail struct {
	Product
	Variants []ProductVariant `json:"variants"`
	Images   []ProductImage   `json:"images"`
}

// Bundle is a curated set of products sold together at a bundle price.
type Bundle struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	ProductIDs []string  `json:"product_ids"`
	Price      int64     `json:"price"`
	ImageURL   string    `json:"image_url,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// EffectivePrice returns the variant price when set, otherwise the product
// base price.
func (v *ProductVariant) EffectivePrice(p *Product) int64 {
	if v.Price != nil {
		return *v.Price
	}
	return p.BasePrice
}

// ValidProductStatuses returns the set of valid product statuses.
func ValidProductStatuses() []string {
	return []string{ProductStatusDraft, ProductStatusPublished, ProductStatusArchived}
}

// IsValidProductStatus checks whether the given status is valid.
func IsValidProductStatus(status string) bool {
	for _, s := range ValidProductStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
