package shlink

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

// ListParams filters a short URLs listing.
type ListParams struct {
	SearchTerm   string
	Tags         []string
	OrderBy      models.OrderBy
	Page         int
	ItemsPerPage int
}

func (p ListParams) query() url.Values {
	query := url.Values{}
	if p.Page > 0 {
		query.Set("page", strconv.Itoa(p.Page))
	}
	if p.ItemsPerPage > 0 {
		query.Set("itemsPerPage", strconv.Itoa(p.ItemsPerPage))
	}
	if p.SearchTerm != "" {
		query.Set("searchTerm", p.SearchTerm)
	}
	if order := p.OrderBy.String(); order != "" {
		query.Set("orderBy", order)
	}
	addList(query, "tags", p.Tags)
	return query
}

// ListShortURLs returns a page of short URLs.
func (c *Client) ListShortURLs(ctx context.Context, params ListParams) (*models.ShortURLsList, error) {
	var resp struct {
		ShortURLs models.ShortURLsList `json:"shortUrls"`
	}
	if err := c.api(ctx, http.MethodGet, "/short-urls", params.query(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.ShortURLs, nil
}

// CreateShortURL creates a short URL. Tags are normalized before sending.
func (c *Client) CreateShortURL(ctx context.Context, data models.ShortURLData) (*models.ShortURL, error) {
	data.Tags = models.NormalizeTags(data.Tags)

	var created models.ShortURL
	if err := c.api(ctx, http.MethodPost, "/short-urls", nil, data, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetShortURL returns a single short URL.
func (c *Client) GetShortURL(ctx context.Context, shortCode, domain string) (*models.ShortURL, error) {
	var shortURL models.ShortURL
	path := "/short-urls/" + url.PathEscape(shortCode)
	if err := c.api(ctx, http.MethodGet, path, domainQuery(domain), nil, &shortURL); err != nil {
		return nil, err
	}
	return &shortURL, nil
}

// DeleteShortURL deletes a short URL.
func (c *Client) DeleteShortURL(ctx context.Context, shortCode, domain string) error {
	path := "/short-urls/" + url.PathEscape(shortCode)
	return c.api(ctx, http.MethodDelete, path, domainQuery(domain), nil, nil)
}

func domainQuery(domain string) url.Values {
	if domain == "" {
		return nil
	}
	return url.Values{"domain": []string{domain}}
}
