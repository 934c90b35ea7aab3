package shlink

import (
	"context"
	"net/http"
)

// Health is the health report of a server.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// IsPassing reports whether the server declares itself healthy.
func (h *Health) IsPassing() bool {
	return h != nil && h.Status == "pass"
}

// MercureInfo holds the data needed to subscribe to real-time updates.
type MercureInfo struct {
	Token         string `json:"token"`
	MercureHubURL string `json:"mercureHubUrl"`
}

// Health fetches the server health, which is served outside the versioned API.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.do(ctx, http.MethodGet, healthPath, nil, nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// MercureInfo fetches the Mercure hub URL and a subscriber token.
func (c *Client) MercureInfo(ctx context.Context) (*MercureInfo, error) {
	var info MercureInfo
	if err := c.api(ctx, http.MethodGet, "/mercure-info", nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
