// Package shlink provides a client for the Shlink REST API.
package shlink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/logger"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
	"github.com/j-veylop/shlink-dashboard-tui/internal/version"
)

const (
	apiPrefix    = "/rest/v2"
	healthPath   = "/rest/health"
	apiKeyHeader = "X-Api-Key"

	// DefaultTimeout is used when no timeout is configured.
	DefaultTimeout = 30 * time.Second
)

// Client talks to a single Shlink server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates a client for the given server profile.
func New(server models.Server, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    server.NormalizedURL(),
		apiKey:     server.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the server URL the client points at.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return parseProblem(resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (c *Client) api(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.do(ctx, method, apiPrefix+path, query, body, out)
}

// addList appends values using the "key[]" convention of the API.
func addList(query url.Values, key string, values []string) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			query.Add(key+"[]", v)
		}
	}
}
