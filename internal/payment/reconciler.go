package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/blomcosmetics/storefront/pkg/httpclient"
)

const reconcileTimeout = 10 * time.Second

// Reconciler asks the payment backend to reconcile an order with the
// gateway, so the order row reflects the captured payment before the
// storefront polls for it. It is strictly fire and forget: the shopper
// already paid, so nothing here may surface as an error or panic on the
// confirmation path.
type Reconciler struct {
	client   *httpclient.Client
	endpoint string
	logger   *slog.Logger
}

// NewReconciler creates a reconciler posting to the given endpoint. An empty
// endpoint disables reconciliation.
func NewReconciler(client *httpclient.Client, endpoint string, logger *slog.Logger) *Reconciler {
	return &Reconciler{client: client, endpoint: endpoint, logger: logger}
}

// Reconcile triggers reconciliation for the order in a background goroutine.
// The goroutine detaches from the request context so the trigger survives
// the shopper navigating away. The outcome is logged and otherwise ignored;
// there is no retry.
func (r *Reconciler) Reconcile(ctx context.Context, orderID string) {
	if r.endpoint == "" || orderID == "" {
		return
	}

	deliverCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("reconcile panicked",
					slog.String("order_id", orderID),
					slog.Any("panic", rec),
				)
			}
		}()

		deliverCtx, cancel := context.WithTimeout(deliverCtx, reconcileTimeout)
		defer cancel()

		if err := r.deliver(deliverCtx, orderID); err != nil {
			r.logger.WarnContext(deliverCtx, "reconcile order failed",
				slog.String("order_id", orderID),
				slog.String("error", err.Error()),
			)
			return
		}

		r.logger.InfoContext(deliverCtx, "order reconciliation triggered",
			slog.String("order_id", orderID),
		)
	}()
}

func (r *Reconciler) deliver(ctx context.Context, orderID string) error {
	payload, err := json.Marshal(map[string]any{
		"order_id":     orderID,
		"requested_at": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal reconcile payload: %w", err)
	}

	resp, err := r.client.Post(ctx, r.endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("post reconcile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("reconcile endpoint returned %d", resp.StatusCode)
	}
	return nil
}
