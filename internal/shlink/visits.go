package shlink

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

// GetVisitsOverview returns the total number of visits recorded by the server.
func (c *Client) GetVisitsOverview(ctx context.Context) (int, error) {
	var resp struct {
		Visits struct {
			VisitsCount int `json:"visitsCount"`
		} `json:"visits"`
	}
	if err := c.api(ctx, http.MethodGet, "/visits", nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Visits.VisitsCount, nil
}

// GetShortURLVisits returns a page of visits to a short URL.
func (c *Client) GetShortURLVisits(ctx context.Context, shortCode, domain string, page int) (*models.VisitsList, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if domain != "" {
		query.Set("domain", domain)
	}

	var resp struct {
		Visits models.VisitsList `json:"visits"`
	}
	path := "/short-urls/" + url.PathEscape(shortCode) + "/visits"
	if err := c.api(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Visits, nil
}
