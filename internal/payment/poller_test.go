package payment

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/store"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

// --- Mock Repository ---

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

// countingOrderRepo settles the order once the attempt counter reaches
// settleAt. settleAt of 0 means never.
type countingOrderRepo struct {
	mockOrderRepository
	calls    atomic.Int64
	settleAt int64
	order    *domain.Order
}

func (r *countingOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	n := r.calls.Add(1)
	o := *r.order
	if r.settleAt > 0 && n >= r.settleAt {
		o.PaymentStatus = domain.PaymentStatusPaid
	}
	return &o, nil
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCarts(t *testing.T) *store.CartStore {
	t.Helper()
	return store.NewCartStore(store.NewMemoryStore(), newTestLogger())
}

func pendingOrder(id string) *domain.Order {
	return &domain.Order{
		ID:            id,
		SessionID:     "sess-1",
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		TotalAmount:   219_00,
		Currency:      "ZAR",
	}
}

// --- Tests ---

func TestConfirm_PaidImmediately(t *testing.T) {
	repo := &countingOrderRepo{settleAt: 1, order: pendingOrder("order-1")}
	carts := newTestCarts(t)
	poller := NewPoller(repo, carts, newTestLogger(), WithInterval(time.Millisecond))

	result, err := poller.Confirm(context.Background(), "order-1", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, StatePaid, result.State)
	assert.Equal(t, 1, result.Attempts)
	require.NotNil(t, result.Order)
	assert.True(t, result.Order.IsSettled())
}

func TestConfirm_PaidAfterRetries(t *testing.T) {
	repo := &countingOrderRepo{settleAt: 7, order: pendingOrder("order-2")}
	poller := NewPoller(repo, newTestCarts(t), newTestLogger(), WithInterval(time.Millisecond))

	result, err := poller.Confirm(context.Background(), "order-2", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, StatePaid, result.State)
	assert.Equal(t, 7, result.Attempts)
}

func TestConfirm_PendingAfterBudgetExhausted(t *testing.T) {
	repo := &countingOrderRepo{settleAt: 0, order: pendingOrder("order-3")}
	poller := NewPoller(repo, newTestCarts(t), newTestLogger(),
		WithInterval(time.Millisecond), WithMaxTries(30))

	result, err := poller.Confirm(context.Background(), "order-3", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, StatePending, result.State)
	assert.Equal(t, 30, result.Attempts)
	assert.Nil(t, result.Order)
}

func TestConfirm_OrderNeverAppears(t *testing.T) {
	repo := new(mockOrderRepository)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("order", "missing"))
	poller := NewPoller(repo, newTestCarts(t), newTestLogger(),
		WithInterval(time.Millisecond), WithMaxTries(5))

	result, err := poller.Confirm(context.Background(), "missing", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, StateNotFound, result.State)
	assert.Equal(t, 5, result.Attempts)
}

func TestConfirm_SettlementOnStatusField(t *testing.T) {
	// Some gateway webhooks write the order status, not the payment status.
	order := pendingOrder("order-4")
	order.Status = domain.OrderStatusComplete

	repo := new(mockOrderRepository)
	repo.On("GetByID", mock.Anything, "order-4").Return(order, nil)
	poller := NewPoller(repo, newTestCarts(t), newTestLogger(), WithInterval(time.Millisecond))

	result, err := poller.Confirm(context.Background(), "order-4", "sess-1")

	require.NoError(t, err)
	assert.Equal(t, StatePaid, result.State)
}

func TestConfirm_ClearsCartOnSettlement(t *testing.T) {
	ctx := context.Background()
	carts := newTestCarts(t)

	_, err := carts.AddItem(ctx, "sess-1", store.AddItemInput{
		ProductID: "prod-1",
		Name:      "Cuticle Oil",
		Price:     150_00,
		Quantity:  2,
	})
	require.NoError(t, err)

	repo := &countingOrderRepo{settleAt: 1, order: pendingOrder("order-5")}
	poller := NewPoller(repo, carts, newTestLogger(), WithInterval(time.Millisecond))

	_, err = poller.Confirm(ctx, "order-5", "sess-1")
	require.NoError(t, err)

	cart, err := carts.Snapshot(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalAmount)
}

func TestConfirm_SettlementHooksRunInOrder(t *testing.T) {
	repo := &countingOrderRepo{settleAt: 1, order: pendingOrder("order-hooks")}

	var calls []string
	poller := NewPoller(repo, newTestCarts(t), newTestLogger(),
		WithInterval(time.Millisecond),
		WithSettlementHook(func(ctx context.Context, o *domain.Order) {
			calls = append(calls, "first:"+o.ID)
		}),
		WithSettlementHook(func(ctx context.Context, o *domain.Order) {
			calls = append(calls, "second:"+o.ID)
		}),
	)

	_, err := poller.Confirm(context.Background(), "order-hooks", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"first:order-hooks", "second:order-hooks"}, calls)
}

func TestConfirm_ContextCancelled(t *testing.T) {
	repo := &countingOrderRepo{settleAt: 0, order: pendingOrder("order-6")}
	poller := NewPoller(repo, newTestCarts(t), newTestLogger(),
		WithInterval(50*time.Millisecond), WithMaxTries(30))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := poller.Confirm(ctx, "order-6", "sess-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfirm_EmptyOrderID(t *testing.T) {
	poller := NewPoller(new(mockOrderRepository), newTestCarts(t), newTestLogger())

	_, err := poller.Confirm(context.Background(), "", "sess-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestConfirm_RepositoryErrorIsPermanent(t *testing.T) {
	repo := new(mockOrderRepository)
	repo.On("GetByID", mock.Anything, "order-7").Return(nil, assert.AnError)
	poller := NewPoller(repo, newTestCarts(t), newTestLogger(), WithInterval(time.Millisecond))

	_, err := poller.Confirm(context.Background(), "order-7", "sess-1")
	require.Error(t, err)
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}
