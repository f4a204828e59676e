package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/blomcosmetics/storefront/pkg/httpclient"
)

// AddressSuggestion is one autocomplete candidate from the address provider.
type AddressSuggestion struct {
	Text       string `json:"text"`
	Suburb     string `json:"suburb,omitempty"`
	City       string `json:"city,omitempty"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// AddressClient queries the address autocomplete provider used on the
// checkout form. There is no sensible offline fallback here; failures
// surface to the handler and the shopper types the address by hand.
type AddressClient struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewAddressClient creates an address autocomplete client.
func NewAddressClient(client *httpclient.Client, baseURL, apiKey string, logger *slog.Logger) *AddressClient {
	return &AddressClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

// Complete returns address suggestions for a partial input. Queries shorter
// than three characters return nothing without hitting the provider.
func (c *AddressClient) Complete(ctx context.Context, query string) ([]AddressSuggestion, error) {
	query = strings.TrimSpace(query)
	if len(query) < 3 {
		return []AddressSuggestion{}, nil
	}

	endpoint := fmt.Sprintf("%s/v1/autocomplete?q=%s&country=ZA&key=%s",
		c.baseURL, url.QueryEscape(query), url.QueryEscape(c.apiKey))

	resp, err := c.client.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("address autocomplete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("address provider returned %d", resp.StatusCode)
	}

	var payload struct {
		Suggestions []AddressSuggestion `json:"suggestions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode address suggestions: %w", err)
	}

	c.logger.DebugContext(ctx, "address suggestions fetched",
		slog.Int("count", len(payload.Suggestions)),
	)

	if payload.Suggestions == nil {
		payload.Suggestions = []AddressSuggestion{}
	}
	return payload.Suggestions, nil
}
