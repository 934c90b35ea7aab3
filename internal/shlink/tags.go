package shlink

import (
	"context"
	"net/http"
	"net/url"
	"sort"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

// ListTags returns every tag with its stats, sorted by name.
// Tags reported without stats get zero counters.
func (c *Client) ListTags(ctx context.Context) ([]models.TagStats, error) {
	var resp struct {
		Tags struct {
			Data  []string          `json:"data"`
			Stats []models.TagStats `json:"stats"`
		} `json:"tags"`
	}
	query := url.Values{"withStats": []string{"true"}}
	if err := c.api(ctx, http.MethodGet, "/tags", query, nil, &resp); err != nil {
		return nil, err
	}

	byName := make(map[string]models.TagStats, len(resp.Tags.Stats))
	for _, s := range resp.Tags.Stats {
		byName[s.Tag] = s
	}
	for _, name := range resp.Tags.Data {
		if _, ok := byName[name]; !ok {
			byName[name] = models.TagStats{Tag: name}
		}
	}

	tags := make([]models.TagStats, 0, len(byName))
	for _, s := range byName {
		tags = append(tags, s)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Tag < tags[j].Tag })
	return tags, nil
}

// DeleteTags removes tags from the server.
func (c *Client) DeleteTags(ctx context.Context, tags ...string) error {
	query := url.Values{}
	addList(query, "tags", tags)
	return c.api(ctx, http.MethodDelete, "/tags", query, nil, nil)
}

// RenameTag renames a tag.
func (c *Client) RenameTag(ctx context.Context, oldName, newName string) error {
	body := map[string]string{
		"oldName": oldName,
		"newName": models.NormalizeTag(newName),
	}
	return c.api(ctx, http.MethodPut, "/tags", nil, body, nil)
}
