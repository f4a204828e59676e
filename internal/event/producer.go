// Package event publishes storefront domain events to Kafka. Downstream
// consumers (analytics, abandoned-cart campaigns, the search indexer) feed
// off these topics.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blomcosmetics/storefront/internal/domain"
	pkgkafka "github.com/blomcosmetics/storefront/pkg/kafka"
)

// Kafka topics for storefront domain events.
const (
	TopicCartUpdated     = "storefront.cart.updated"
	TopicWishlistUpdated = "storefront.wishlist.updated"
	TopicOrderPlaced     = "storefront.order.placed"
	TopicOrderSettled    = "storefront.order.settled"
	TopicProductChanged  = "storefront.product.changed"
)

// Aggregate type constants.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
	AggregateTypeOrder    = "order"
	AggregateTypeProduct  = "product"
)

// Source identifier for events originating from the storefront.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	CartID      string `json:"cart_id"`
	SessionID   string `json:"session_id"`
	ItemCount   int    `json:"item_count"`
	Subtotal    int64  `json:"subtotal_amount"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID string   `json:"session_id"`
	ItemCount int      `json:"item_count"`
	Products  []string `json:"product_ids"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID     string `json:"order_id"`
	SessionID   string `json:"session_id"`
	Email       string `json:"email"`
	ItemCount   int    `json:"item_count"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
	CouponCode  string `json:"coupon_code,omitempty"`
}

// OrderSettledData is the payload for an order.settled event.
type OrderSettledData struct {
	OrderID     string `json:"order_id"`
	TotalAmount int64  `json:"total_amount"`
	Currency    string `json:"currency"`
}

// ProductChangedData is the payload for a product.changed event. The search
// indexer consumes it to keep the index in sync with the catalog.
type ProductChangedData struct {
	ProductID string `json:"product_id"`
	Deleted   bool   `json:"deleted"`
}

// Producer publishes storefront domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CartUpdatedData{
		CartID:      cart.ID,
		SessionID:   cart.SessionID,
		ItemCount:   cart.ItemCount(),
		Subtotal:    cart.SubtotalAmount,
		TotalAmount: cart.TotalAmount,
		Currency:    cart.Currency,
	}
	return p.publish(ctx, TopicCartUpdated, cart.ID, AggregateTypeCart, data)
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, wl *domain.Wishlist) error {
	products := make([]string, 0, len(wl.Items))
	for _, item := range wl.Items {
		products = append(products, item.ProductID)
	}
	data := WishlistUpdatedData{
		SessionID: wl.SessionID,
		ItemCount: len(wl.Items),
		Products:  products,
	}
	return p.publish(ctx, TopicWishlistUpdated, wl.SessionID, AggregateTypeWishlist, data)
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	data := OrderPlacedData{
		OrderID:     order.ID,
		SessionID:   order.SessionID,
		Email:       order.Email,
		ItemCount:   len(order.Items),
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		CouponCode:  order.CouponCode,
	}
	return p.publish(ctx, TopicOrderPlaced, order.ID, AggregateTypeOrder, data)
}

// PublishOrderSettled publishes an order.settled event.
func (p *Producer) PublishOrderSettled(ctx context.Context, order *domain.Order) error {
	data := OrderSettledData{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
	}
	return p.publish(ctx, TopicOrderSettled, order.ID, AggregateTypeOrder, data)
}

// PublishProductChanged publishes a product.changed event.
func (p *Producer) PublishProductChanged(ctx context.Context, productID string, deleted bool) error {
	data := ProductChangedData{
		ProductID: productID,
		Deleted:   deleted,
	}
	return p.publish(ctx, TopicProductChanged, productID, AggregateTypeProduct, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
