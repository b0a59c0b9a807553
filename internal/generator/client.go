package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Sentinel errors for webhook delivery failures.
var (
	ErrWebhookUnreachable = errors.New("webhook unreachable")
	ErrWebhookTimeout     = errors.New("webhook timeout")
	ErrWebhookRejected    = errors.New("webhook rejected payload")
)

// Sender delivers one payload and reports the HTTP status it got back.
type Sender interface {
	Send(ctx context.Context, payload map[string]any) (int, error)
}

// WebhookClient implements Sender by POSTing JSON to the ingestion webhook.
type WebhookClient struct {
	url    string
	token  string
	client *http.Client
}

// NewWebhookClient creates a new webhook client. An empty token sends no
// Authorization header.
func NewWebhookClient(url, token string, timeout time.Duration) *WebhookClient {
	return &WebhookClient{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *WebhookClient) URL() string { return c.url }

// Send returns the response status on any HTTP response. Non-2xx statuses
// also return ErrWebhookRejected.
func (c *WebhookClient) Send(ctx context.Context, payload map[string]any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, classifyError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("%w: status %d", ErrWebhookRejected, resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrWebhookTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrWebhookTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrWebhookUnreachable, err)
}

var _ Sender = (*WebhookClient)(nil)
