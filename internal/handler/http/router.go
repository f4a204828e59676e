package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blomcosmetics/storefront/pkg/health"
	"github.com/blomcosmetics/storefront/pkg/middleware"
)

// RouterConfig carries the handlers and HTTP-level settings the router needs.
type RouterConfig struct {
	Cart     *CartHandler
	Wishlist *WishlistHandler
	Catalog  *CatalogHandler
	Checkout *CheckoutHandler
	Review   *ReviewHandler
	Account  *AccountHandler
	Pickup   *PickupHandler

	Health    *health.Handler
	JWTSecret string
	CORS      middleware.CORSConfig

	// RateLimitRPS of zero disables rate limiting.
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	// The payment confirmation poll can block for most of a minute.
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public catalog endpoints, no session required.
		r.Get("/products", cfg.Catalog.ListProducts)
		r.Get("/products/{slug}", cfg.Catalog.GetProductBySlug)
		r.Get("/bundles", cfg.Catalog.ListBundles)
		r.Get("/search", cfg.Catalog.SearchProducts)
		r.Get("/search/suggest", cfg.Catalog.Suggest)

		r.Get("/products/{id}/reviews", cfg.Review.ListReviews)
		r.Post("/products/{id}/reviews", cfg.Review.SubmitReview)

		r.Get("/pickup-points", cfg.Pickup.ListPickupPoints)
		r.Get("/address/complete", cfg.Pickup.CompleteAddress)

		// Session-scoped shopper state.
		r.Group(func(r chi.Router) {
			r.Use(SessionFromHeader)

			r.Get("/cart", cfg.Cart.GetCart)
			r.Delete("/cart", cfg.Cart.ClearCart)
			r.Post("/cart/items", cfg.Cart.AddItem)
			r.Put("/cart/items/{itemId}", cfg.Cart.UpdateItemQuantity)
			r.Delete("/cart/items/{itemId}", cfg.Cart.RemoveItem)

			r.Get("/wishlist", cfg.Wishlist.GetWishlist)
			r.Delete("/wishlist", cfg.Wishlist.ClearWishlist)
			r.Post("/wishlist/items", cfg.Wishlist.AddItem)
			r.Post("/wishlist/toggle", cfg.Wishlist.ToggleItem)
			r.Get("/wishlist/items/{productId}", cfg.Wishlist.ContainsItem)
			r.Delete("/wishlist/items/{productId}", cfg.Wishlist.RemoveItem)

			r.Get("/checkout/quote", cfg.Checkout.Quote)
			r.Post("/checkout", cfg.Checkout.PlaceOrder)

			r.Get("/orders/{id}", cfg.Checkout.GetOrder)
			r.Post("/orders/{id}/confirm", cfg.Checkout.ConfirmPayment)
			r.Get("/orders/{id}/invoice", cfg.Checkout.GetInvoice)
		})

		// Authenticated account endpoints.
		r.Route("/account", func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret))

			r.Get("/profile", cfg.Account.GetProfile)
			r.Put("/profile", cfg.Account.UpdateProfile)

			r.Get("/addresses", cfg.Account.ListAddresses)
			r.Post("/addresses", cfg.Account.AddAddress)
			r.Put("/addresses/{id}", cfg.Account.UpdateAddress)
			r.Delete("/addresses/{id}", cfg.Account.RemoveAddress)
			r.Put("/addresses/{id}/default", cfg.Account.SetDefaultAddress)

			r.Get("/orders", cfg.Account.ListOrders)
		})

		// Admin catalog management.
		r.Route("/admin/products", func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret))

			r.Post("/", cfg.Catalog.CreateProduct)
			r.Put("/{id}", cfg.Catalog.UpdateProduct)
			r.Delete("/{id}", cfg.Catalog.ArchiveProduct)
		})
	})

	return r
}
