package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client fetches workflow snapshots over the HTTP API. It satisfies the
// poller's source contract, same as the server-side Service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a snapshot client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Snapshot fetches one workflow snapshot. Any transport failure or
// non-success status is returned as an error; the caller decides whether to
// retry.
func (c *Client) Snapshot(ctx context.Context, orderID uuid.UUID) (*Snapshot, error) {
	url := fmt.Sprintf("%s/orders/%s/workflow", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build workflow request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workflow fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("workflow fetch failed (%d)", resp.StatusCode)
	}

	var envelope struct {
		Data Snapshot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode workflow snapshot: %w", err)
	}
	return &envelope.Data, nil
}
