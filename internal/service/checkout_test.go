package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/event"
	"github.com/blomcosmetics/storefront/internal/store"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
	pkgkafka "github.com/blomcosmetics/storefront/pkg/kafka"
)

// --- Mock Repositories ---

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepository) UpdatePaymentStatus(ctx context.Context, id, status, paymentStatus string) error {
	args := m.Called(ctx, id, status, paymentStatus)
	return args.Error(0)
}

type mockCouponRepository struct {
	mock.Mock
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *mockCouponRepository) IncrementRedemptions(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestProducer() *event.Producer {
	// No broker listens in tests; publish failures are logged and swallowed.
	logger := newTestLogger()
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig([]string{"localhost:9092"}), logger)
	return event.NewProducer(kafkaProducer, logger)
}

func newTestCheckout(t *testing.T, orders *mockOrderRepository, coupons *mockCouponRepository) (*CheckoutService, *store.CartStore) {
	t.Helper()
	carts := store.NewCartStore(store.NewMemoryStore(), newTestLogger())
	svc := NewCheckoutService(carts, orders, coupons, newTestProducer(), newTestLogger())
	return svc, carts
}

func fillCart(t *testing.T, carts *store.CartStore, sessionID string, price int64, qty int) {
	t.Helper()
	_, err := carts.AddItem(context.Background(), sessionID, store.AddItemInput{
		ProductID: "prod-1",
		Name:      "Gel Polish Rose",
		Price:     price,
		Quantity:  qty,
	})
	require.NoError(t, err)
}

// --- Tests ---

func TestQuoteCart_AboveFreeShippingThreshold(t *testing.T) {
	svc, carts := newTestCheckout(t, new(mockOrderRepository), new(mockCouponRepository))
	fillCart(t, carts, "sess-1", 1900_00, 1)

	quote, err := svc.QuoteCart(context.Background(), "sess-1", "")
	require.NoError(t, err)

	assert.Equal(t, int64(1900_00), quote.SubtotalAmount)
	assert.Zero(t, quote.ShippingAmount)
	assert.Equal(t, int64(285_00), quote.VATAmount) // 15% of 1900.00
	assert.Equal(t, int64(2185_00), quote.TotalAmount)
}

func TestQuoteCart_BelowFreeShippingThreshold(t *testing.T) {
	svc, carts := newTestCheckout(t, new(mockOrderRepository), new(mockCouponRepository))
	fillCart(t, carts, "sess-1", 300_00, 1)

	quote, err := svc.QuoteCart(context.Background(), "sess-1", "")
	require.NoError(t, err)

	assert.Equal(t, int64(300_00), quote.SubtotalAmount)
	assert.Equal(t, domain.ShippingFee, quote.ShippingAmount)
	assert.Equal(t, int64(59_85), quote.VATAmount) // 15% of 399.00
	assert.Equal(t, int64(458_85), quote.TotalAmount)
}

func TestQuoteCart_EmptyCart(t *testing.T) {
	svc, _ := newTestCheckout(t, new(mockOrderRepository), new(mockCouponRepository))

	_, err := svc.QuoteCart(context.Background(), "sess-empty", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestQuoteCart_PercentCoupon(t *testing.T) {
	coupons := new(mockCouponRepository)
	coupons.On("GetByCode", mock.Anything, "BLOM10").Return(&domain.Coupon{
		Code:     "BLOM10",
		Type:     domain.CouponTypePercent,
		Value:    10,
		IsActive: true,
	}, nil)

	svc, carts := newTestCheckout(t, new(mockOrderRepository), coupons)
	fillCart(t, carts, "sess-1", 2000_00, 1)

	quote, err := svc.QuoteCart(context.Background(), "sess-1", "BLOM10")
	require.NoError(t, err)

	assert.Equal(t, int64(200_00), quote.DiscountAmount)
	// 1800.00 after discount still clears the free shipping threshold.
	assert.Zero(t, quote.ShippingAmount)
	assert.Equal(t, int64(270_00), quote.VATAmount)
	assert.Equal(t, int64(2070_00), quote.TotalAmount)
}

func TestQuoteCart_CouponDropsCartBelowThreshold(t *testing.T) {
	coupons := new(mockCouponRepository)
	coupons.On("GetByCode", mock.Anything, "HALF").Return(&domain.Coupon{
		Code:     "HALF",
		Type:     domain.CouponTypePercent,
		Value:    50,
		IsActive: true,
	}, nil)

	svc, carts := newTestCheckout(t, new(mockOrderRepository), coupons)
	fillCart(t, carts, "sess-1", 1200_00, 1)

	quote, err := svc.QuoteCart(context.Background(), "sess-1", "HALF")
	require.NoError(t, err)

	assert.Equal(t, int64(600_00), quote.DiscountAmount)
	assert.Equal(t, domain.ShippingFee, quote.ShippingAmount)
	assert.Equal(t, int64(600_00+domain.ShippingFee+quote.VATAmount), quote.TotalAmount)
}

func TestQuoteCart_InvalidCoupon(t *testing.T) {
	coupons := new(mockCouponRepository)
	coupons.On("GetByCode", mock.Anything, "NOPE").Return(nil, apperrors.NotFound("coupon", "NOPE"))

	svc, carts := newTestCheckout(t, new(mockOrderRepository), coupons)
	fillCart(t, carts, "sess-1", 500_00, 1)

	_, err := svc.QuoteCart(context.Background(), "sess-1", "NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestQuoteCart_ExpiredCoupon(t *testing.T) {
	expired := time.Now().Add(-24 * time.Hour)
	coupons := new(mockCouponRepository)
	coupons.On("GetByCode", mock.Anything, "OLD").Return(&domain.Coupon{
		Code:      "OLD",
		Type:      domain.CouponTypeFixed,
		Value:     50_00,
		IsActive:  true,
		ExpiresAt: &expired,
	}, nil)

	svc, carts := newTestCheckout(t, new(mockOrderRepository), coupons)
	fillCart(t, carts, "sess-1", 500_00, 1)

	_, err := svc.QuoteCart(context.Background(), "sess-1", "OLD")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPlaceOrder_Success(t *testing.T) {
	orders := new(mockOrderRepository)
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)

	svc, carts := newTestCheckout(t, orders, new(mockCouponRepository))
	fillCart(t, carts, "sess-1", 300_00, 2)

	order, err := svc.PlaceOrder(context.Background(), "sess-1", &PlaceOrderInput{
		Email:         "shopper@example.com",
		PickupPointID: "pp-42",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, int64(600_00), order.SubtotalAmount)
	assert.Equal(t, domain.ShippingFee, order.ShippingAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	// Placing the order must not clear the cart; settlement does that.
	cart, err := carts.Snapshot(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.NotEmpty(t, cart.Items)

	orders.AssertExpectations(t)
}

func TestPlaceOrder_RedeemsCoupon(t *testing.T) {
	orders := new(mockOrderRepository)
	orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
	coupons := new(mockCouponRepository)
	coupons.On("GetByCode", mock.Anything, "BLOM10").Return(&domain.Coupon{
		Code:     "BLOM10",
		Type:     domain.CouponTypeFixed,
		Value:    100_00,
		IsActive: true,
	}, nil)
	coupons.On("IncrementRedemptions", mock.Anything, "BLOM10").Return(nil)

	svc, carts := newTestCheckout(t, orders, coupons)
	fillCart(t, carts, "sess-1", 1500_00, 1)

	order, err := svc.PlaceOrder(context.Background(), "sess-1", &PlaceOrderInput{
		Email:           "shopper@example.com",
		CouponCode:      "BLOM10",
		ShippingAddress: &domain.Address{FullName: "A Shopper", Line1: "1 Main Rd", City: "Cape Town", Province: "Western Cape", PostalCode: "8001"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100_00), order.DiscountAmount)
	assert.Equal(t, "BLOM10", order.CouponCode)
	coupons.AssertCalled(t, "IncrementRedemptions", mock.Anything, "BLOM10")
}

func TestPlaceOrder_InvalidEmail(t *testing.T) {
	svc, carts := newTestCheckout(t, new(mockOrderRepository), new(mockCouponRepository))
	fillCart(t, carts, "sess-1", 300_00, 1)

	_, err := svc.PlaceOrder(context.Background(), "sess-1", &PlaceOrderInput{
		Email:         "not-an-email",
		PickupPointID: "pp-1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPlaceOrder_NoDestination(t *testing.T) {
	svc, carts := newTestCheckout(t, new(mockOrderRepository), new(mockCouponRepository))
	fillCart(t, carts, "sess-1", 300_00, 1)

	_, err := svc.PlaceOrder(context.Background(), "sess-1", &PlaceOrderInput{
		Email: "shopper@example.com",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetOrder_SessionScoping(t *testing.T) {
	stored := &domain.Order{ID: "order-1", SessionID: "sess-1", UserID: "user-9"}
	orders := new(mockOrderRepository)
	orders.On("GetByID", mock.Anything, "order-1").Return(stored, nil)

	svc, _ := newTestCheckout(t, orders, new(mockCouponRepository))

	got, err := svc.GetOrder(context.Background(), "order-1", "sess-1", "")
	require.NoError(t, err)
	assert.Equal(t, "order-1", got.ID)

	got, err = svc.GetOrder(context.Background(), "order-1", "other-session", "user-9")
	require.NoError(t, err)
	assert.Equal(t, "order-1", got.ID)

	_, err = svc.GetOrder(context.Background(), "order-1", "other-session", "other-user")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
