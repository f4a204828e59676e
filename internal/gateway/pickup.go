// Package gateway holds clients for the external services the storefront
// reads from at checkout: the courier's pickup point API, address
// autocomplete and the invoicing service.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/blomcosmetics/storefront/internal/domain"
	"github.com/blomcosmetics/storefront/pkg/httpclient"
)

// PickupClient fetches courier pickup points. The courier API has a history
// of outages, so calls run through a circuit breaker and degrade to a static
// list of major collection points rather than blocking checkout.
type PickupClient struct {
	client  *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// NewPickupClient creates a pickup point client.
func NewPickupClient(client *httpclient.CircuitBreakerClient, baseURL string, logger *slog.Logger) *PickupClient {
	return &PickupClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// ListPickupPoints returns pickup points, optionally filtered by province.
// Courier API failures are logged and answered from the static list so the
// shopper always sees collection options.
func (c *PickupClient) ListPickupPoints(ctx context.Context, province string) ([]domain.PickupPoint, error) {
	points, err := c.fetch(ctx, province)
	if err != nil {
		c.logger.WarnContext(ctx, "courier pickup point fetch failed, serving static list",
			slog.String("province", province),
			slog.String("error", err.Error()),
		)
		return staticPickupPoints(province), nil
	}
	return points, nil
}

func (c *PickupClient) fetch(ctx context.Context, province string) ([]domain.PickupPoint, error) {
	endpoint := c.baseURL + "/v1/pickup-points"
	if province != "" {
		endpoint += "?province=" + url.QueryEscape(province)
	}

	resp, err := c.client.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("get pickup points: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("courier api returned %d", resp.StatusCode)
	}

	var payload struct {
		Points []domain.PickupPoint `json:"points"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode pickup points: %w", err)
	}

	return payload.Points, nil
}

// staticPickupPoints is the offline fallback: the courier's flagship counters
// in the major metros. Updated by hand when the courier changes its network.
func staticPickupPoints(province string) []domain.PickupPoint {
	all := []domain.PickupPoint{
		{ID: "static-cpt-01", Name: "The Courier Guy Cape Town CBD", Address: "12 Bree Street", City: "Cape Town", Province: "Western Cape", Lat: -33.9186, Lng: 18.4233},
		{ID: "static-cpt-02", Name: "The Courier Guy Bellville", Address: "5 Voortrekker Road", City: "Bellville", Province: "Western Cape", Lat: -33.9004, Lng: 18.6290},
		{ID: "static-jhb-01", Name: "The Courier Guy Sandton", Address: "90 Rivonia Road", City: "Sandton", Province: "Gauteng", Lat: -26.1076, Lng: 28.0567},
		{ID: "static-jhb-02", Name: "The Courier Guy Randburg", Address: "281 Jan Smuts Avenue", City: "Randburg", Province: "Gauteng", Lat: -26.0936, Lng: 28.0064},
		{ID: "static-pta-01", Name: "The Courier Guy Pretoria East", Address: "570 Fehrsen Street", City: "Pretoria", Province: "Gauteng", Lat: -25.7713, Lng: 28.2384},
		{ID: "static-dbn-01", Name: "The Courier Guy Umhlanga", Address: "2 Ncondo Place", City: "Durban", Province: "KwaZulu-Natal", Lat: -29.7263, Lng: 31.0664},
		{ID: "static-gqe-01", Name: "The Courier Guy Gqeberha", Address: "15 Ring Road", City: "Gqeberha", Province: "Eastern Cape", Lat: -33.9480, Lng: 25.5569},
	}

	if province == "" {
		return all
	}

	var filtered []domain.PickupPoint
	for _, p := range all {
		if strings.EqualFold(p.Province, province) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
