// Package payment is the HTTP client for the external payment-authorization
// capability. It prepares the authorization request and records the result;
// capture itself happens outside this service.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/avdeev-dev/fulfillment-service/internal/config"
)

const (
	StatusAuthorized = "AUTHORIZED"
	StatusDeclined   = "DECLINED"
	StatusPending    = "PENDING"
)

type AuthorizationRequest struct {
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	OrderReference string `json:"order_reference"`
	ReturnURL      string `json:"return_url"`
	CancelURL      string `json:"cancel_url"`
}

type Authorization struct {
	ID     string `json:"authorization_id"`
	Status string `json:"status"`
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func New(cfg config.Payment) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (c *Client) Configured() bool { return c.baseURL != "" && c.apiKey != "" }
func (c *Client) BaseURL() string { return c.baseURL }
func (c *Client) APIKeyLength() int { return len(c.apiKey) }

func (c *Client) Authorize(ctx context.Context, req AuthorizationRequest) (Authorization, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Authorization{}, fmt.Errorf("failed to marshal authorization request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/authorizations", bytes.NewReader(body))
	if err != nil {
		return Authorization{}, fmt.Errorf("failed to build authorization request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return Authorization{}, fmt.Errorf("payment request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Authorization{}, fmt.Errorf("payment provider returned status %d", res.StatusCode)
	}

	var auth Authorization
	if err := json.NewDecoder(res.Body).Decode(&auth); err != nil {
		return Authorization{}, fmt.Errorf("failed to decode authorization response: %w", err)
	}

	return auth, nil
}
