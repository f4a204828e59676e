// Package repository defines the persistence interfaces for the storefront's
// catalog, orders, reviews, coupons and customer data.
package repository

import (
	"context"

	"github.com/blomcosmetics/storefront/internal/domain"
)

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Category string
	Brand    string
	Search   string
	MinPrice int64
	MaxPrice int64
}

// ProductRepository provides access to the product catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.ProductDetail, error)
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]*domain.Product, int64, error)
	ListBundles(ctx context.Context) ([]*domain.Bundle, error)
}

// OrderRepository provides access to placed orders.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, int64, error)
	UpdatePaymentStatus(ctx context.Context, id, status, paymentStatus string) error
}

// ReviewRepository provides access to product reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*domain.Review, int64, error)
	Summary(ctx context.Context, productID string) (*domain.ReviewSummary, error)
}

// CouponRepository provides access to discount coupons.
type CouponRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Coupon, error)
	IncrementRedemptions(ctx context.Context, code string) error
}

// AddressRepository provides access to a customer's address book.
type AddressRepository interface {
	Create(ctx context.Context, a *domain.Address) error
	Update(ctx context.Context, a *domain.Address) error
	Delete(ctx context.Context, userID, id string) error
	GetByID(ctx context.Context, userID, id string) (*domain.Address, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Address, error)
	SetDefault(ctx context.Context, userID, id string) error
}

// ProfileRepository provides access to customer profiles.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Upsert(ctx context.Context, p *domain.Profile) error
}
