// Package notifier is the HTTP client for the external notification
// capability. Template rendering happens on the mail service side; this client
// only selects a template and ships the context data.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/avdeev-dev/fulfillment-service/internal/config"
)

type sendRequest struct {
	TemplateID string         `json:"template_id"`
	Recipient  string         `json:"recipient"`
	Data       map[string]any `json:"data"`
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func New(cfg config.Notifier) *Client {
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (c *Client) Configured() bool { return c.baseURL != "" && c.apiKey != "" }
func (c *Client) BaseURL() string { return c.baseURL }
func (c *Client) APIKeyLength() int { return len(c.apiKey) }

func (c *Client) Send(ctx context.Context, templateID, recipient string, data map[string]any) error {
	body, err := json.Marshal(sendRequest{
		TemplateID: templateID,
		Recipient:  recipient,
		Data:       data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("notification service returned status %d", res.StatusCode)
	}
	return nil
}
