// Package notify sends transactional email to shoppers via Resend.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/blomcosmetics/storefront/internal/domain"
)

// Mailer sends order receipts. Receipt mail is best effort: a send failure
// is logged and never propagated to the confirmation flow.
type Mailer struct {
	client *resend.Client
	from   string
	logger *slog.Logger
}

// NewMailer creates a mailer. An empty API key disables sending, which is
// the local development default.
func NewMailer(apiKey, from string, logger *slog.Logger) *Mailer {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}
	return &Mailer{
		client: client,
		from:   from,
		logger: logger,
	}
}

// SendReceipt emails the shopper a receipt for a settled order.
func (m *Mailer) SendReceipt(ctx context.Context, order *domain.Order) {
	if m.client == nil {
		m.logger.DebugContext(ctx, "mailer disabled, skipping receipt",
			slog.String("order_id", order.ID),
		)
		return
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{order.Email},
		Subject: fmt.Sprintf("Your BLOM order %s is confirmed", shortOrderRef(order.ID)),
		Html:    receiptHTML(order),
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		m.logger.ErrorContext(ctx, "send receipt failed",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	m.logger.InfoContext(ctx, "receipt sent",
		slog.String("order_id", order.ID),
		slog.String("message_id", sent.Id),
	)
}

// shortOrderRef shortens a UUID to the display reference printed on
// receipts.
func shortOrderRef(id string) string {
	ref := strings.ReplaceAll(id, "-", "")
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return "#" + strings.ToUpper(ref)
}

func receiptHTML(order *domain.Order) string {
	var b strings.Builder
	b.WriteString("<h1>Thank you for your order</h1>")
	fmt.Fprintf(&b, "<p>Order %s, placed %s.</p>",
		shortOrderRef(order.ID), order.CreatedAt.Format(time.DateOnly))
	b.WriteString("<table><tr><th>Item</th><th>Qty</th><th>Price</th></tr>")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			item.Name, item.Quantity, formatRand(item.Price*int64(item.Quantity)))
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, "<p>Subtotal: %s</p>", formatRand(order.SubtotalAmount))
	if order.DiscountAmount > 0 {
		fmt.Fprintf(&b, "<p>Discount (%s): -%s</p>", order.CouponCode, formatRand(order.DiscountAmount))
	}
	fmt.Fprintf(&b, "<p>Shipping: %s</p>", formatRand(order.ShippingAmount))
	fmt.Fprintf(&b, "<p>VAT (15%%): %s</p>", formatRand(order.VATAmount))
	fmt.Fprintf(&b, "<p><strong>Total: %s</strong></p>", formatRand(order.TotalAmount))
	return b.String()
}

func formatRand(cents int64) string {
	return fmt.Sprintf("R%d.%02d", cents/100, cents%100)
}
