// Package payment implements post-checkout payment confirmation. The gateway
// redirects the shopper back before its webhook lands, so settlement is
// confirmed by polling the order row with a bounded retry schedule.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/internal/repository"
	"github.com/blomcosmetics/storefront/internal/store"
	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
)

// Confirmation outcome states.
const (
	StatePaid     = "paid"
	StatePending  = "pending"
	StateNotFound = "not_found"
)

const (
	// DefaultInterval is the fixed wait between polls.
	DefaultInterval = 1500 * time.Millisecond
	// DefaultMaxTries bounds the poll at 30 attempts (45 seconds).
	DefaultMaxTries = 30
)

// errNotSettled drives the retry loop while the order exists but the gateway
// has not yet confirmed funds.
var errNotSettled = errors.New("order not settled")

// Result is the outcome of a confirmation poll.
type Result struct {
	State    string        `json:"state"`
	Attempts int           `json:"attempts"`
	Order    *domain.Order `json:"order,omitempty"`
}

// Poller polls an order until the payment gateway settles it or the attempt
// budget runs out. A pending result is not terminal: the shopper can retry
// from the confirmation page and polling resumes from a fresh budget.
type Poller struct {
	orders     repository.OrderRepository
	carts      *store.CartStore
	reconciler *Reconciler
	hooks      []func(ctx context.Context, order *domain.Order)
	logger     *slog.Logger
	interval   time.Duration
	maxTries   uint
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the fixed poll interval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) { p.interval = d }
}

// WithMaxTries overrides the attempt budget.
func WithMaxTries(n uint) PollerOption {
	return func(p *Poller) { p.maxTries = n }
}

// WithReconciler attaches a reconciler kicked off before polling starts.
func WithReconciler(r *Reconciler) PollerOption {
	return func(p *Poller) { p.reconciler = r }
}

// WithSettlementHook registers a callback invoked after an order settles.
// Hooks run synchronously in registration order and must not block long.
func WithSettlementHook(fn func(ctx context.Context, order *domain.Order)) PollerOption {
	return func(p *Poller) { p.hooks = append(p.hooks, fn) }
}

// NewPoller creates a confirmation poller.
func NewPoller(orders repository.OrderRepository, carts *store.CartStore, logger *slog.Logger, opts ...PollerOption) *Poller {
	p := &Poller{
		orders:   orders,
		carts:    carts,
		logger:   logger,
		interval: DefaultInterval,
		maxTries: DefaultMaxTries,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Confirm polls the order until it settles, the attempt budget runs out, or
// ctx is cancelled. The reconciler is kicked off first so the gateway
// outcome lands in the order row while the poll is running. On settlement
// the session's cart is cleared and the hooks run; all side effects are best
// effort and never fail the confirmation.
func (p *Poller) Confirm(ctx context.Context, orderID, sessionID string) (*Result, error) {
	if orderID == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}

	if p.reconciler != nil {
		p.reconciler.Reconcile(ctx, orderID)
	}

	var (
		attempts  int
		lastState = StateNotFound
	)

	operation := func() (*domain.Order, error) {
		attempts++
		o, err := p.orders.GetByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// The webhook creates the row asynchronously, so a miss
				// early in the poll is expected.
				lastState = StateNotFound
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		if !o.IsSettled() {
			lastState = StatePending
			return nil, errNotSettled
		}
		return o, nil
	}

	order, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(p.interval)),
		backoff.WithMaxTries(p.maxTries),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("confirm payment: %w", ctx.Err())
		}
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, errNotSettled) {
			p.logger.InfoContext(ctx, "payment confirmation exhausted attempts",
				slog.String("order_id", orderID),
				slog.String("state", lastState),
				slog.Int("attempts", attempts),
			)
			return &Result{State: lastState, Attempts: attempts}, nil
		}
		return nil, fmt.Errorf("confirm payment: %w", err)
	}

	p.logger.InfoContext(ctx, "payment confirmed",
		slog.String("order_id", orderID),
		slog.Int("attempts", attempts),
	)

	p.onSettled(ctx, order, sessionID)

	return &Result{State: StatePaid, Attempts: attempts, Order: order}, nil
}

// onSettled clears the cart that produced the order and runs the settlement
// hooks. Failures are logged and swallowed: the payment is already captured
// and the shopper must see the confirmation.
func (p *Poller) onSettled(ctx context.Context, order *domain.Order, sessionID string) {
	if sessionID != "" && p.carts != nil {
		if _, err := p.carts.Clear(ctx, sessionID); err != nil {
			p.logger.WarnContext(ctx, "clear cart after settlement failed",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	for _, hook := range p.hooks {
		hook(ctx, order)
	}
}
