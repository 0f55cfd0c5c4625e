// Package carrier is the HTTP client for the external carrier rate API.
package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/avdeev-dev/fulfillment-service/internal/config"
)

type RateRequest struct {
	OriginZIP      string `json:"origin_zip"`
	DestinationZIP string `json:"destination_zip"`
	Country        string `json:"country"`
	WeightGrams    int    `json:"weight_grams"`
}

type Rate struct {
	ServiceCode     string `json:"service_code"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents"`
	DeliveryDaysMin int    `json:"delivery_days_min"`
	DeliveryDaysMax int    `json:"delivery_days_max"`
}

type ratesResponse struct {
	Rates []Rate `json:"rates"`
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func New(cfg config.Carrier) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// Configured reports whether the carrier credential and endpoint are present.
// The rate engine degrades to "unavailable" when they are not.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.apiKey != ""
}

// BaseURL is exposed for operator introspection only.
func (c *Client) BaseURL() string { return c.baseURL }

// APIKeyLength is exposed for operator introspection only; the key itself
// never leaves the process.
func (c *Client) APIKeyLength() int { return len(c.apiKey) }

func (c *Client) Rates(ctx context.Context, req RateRequest) ([]Rate, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rates", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("carrier request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("carrier returned status %d", res.StatusCode)
	}

	var parsed ratesResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode carrier response: %w", err)
	}

	return parsed.Rates, nil
}
