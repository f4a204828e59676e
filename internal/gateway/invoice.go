package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	apperrors "github.com/blomcosmetics/storefront/pkg/errors"
	"github.com/blomcosmetics/storefront/pkg/httpclient"
)

// InvoiceClient fetches VAT invoices from the invoicing service. Invoices
// are rendered and stored externally; the storefront only proxies the PDF to
// the shopper.
type InvoiceClient struct {
	client  *httpclient.Client
	baseURL string
	logger  *slog.Logger
}

// NewInvoiceClient creates an invoice client.
func NewInvoiceClient(client *httpclient.Client, baseURL string, logger *slog.Logger) *InvoiceClient {
	return &InvoiceClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Fetch returns the invoice PDF for an order. A 404 from the invoicing
// service maps to ErrNotFound: invoices are generated asynchronously and may
// not exist yet.
func (c *InvoiceClient) Fetch(ctx context.Context, orderID string) ([]byte, error) {
	if orderID == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}

	endpoint := fmt.Sprintf("%s/v1/invoices/%s.pdf", c.baseURL, url.PathEscape(orderID))

	resp, err := c.client.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == 404:
		return nil, apperrors.NotFound("invoice", orderID)
	case resp.StatusCode != 200:
		return nil, fmt.Errorf("invoicing service returned %d", resp.StatusCode)
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read invoice body: %w", err)
	}

	c.logger.DebugContext(ctx, "invoice fetched",
		slog.String("order_id", orderID),
		slog.Int("bytes", len(pdf)),
	)

	return pdf, nil
}
