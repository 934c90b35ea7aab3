package models

import (
	"strings"
	"time"
)

// ShortURLMeta holds the optional validity constraints of a short URL.
type ShortURLMeta struct {
	ValidSince *time.Time `json:"validSince,omitempty"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
	MaxVisits  *int       `json:"maxVisits,omitempty"`
}

// ShortURL is a short URL as returned by the server.
type ShortURL struct {
	DateCreated time.Time    `json:"dateCreated"`
	Domain      *string      `json:"domain"`
	Title       *string      `json:"title,omitempty"`
	Meta        ShortURLMeta `json:"meta"`
	ShortCode   string       `json:"shortCode"`
	ShortURL    string       `json:"shortUrl"`
	LongURL     string       `json:"longUrl"`
	Tags        []string     `json:"tags"`
	VisitsCount int          `json:"visitsCount"`
}

// DomainOrDefault returns the short URL domain, or an empty string for the default one.
func (s *ShortURL) DomainOrDefault() string {
	if s.Domain == nil {
		return ""
	}
	return *s.Domain
}

// IsExpired reports whether the short URL can no longer be visited at the given time.
func (s *ShortURL) IsExpired(now time.Time) bool {
	if s.Meta.ValidUntil != nil && now.After(*s.Meta.ValidUntil) {
		return true
	}
	if s.Meta.MaxVisits != nil && s.VisitsCount >= *s.Meta.MaxVisits {
		return true
	}
	return false
}

// ShortURLData is the payload used to create a short URL.
type ShortURLData struct {
	ValidSince      *time.Time `json:"validSince,omitempty"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`
	MaxVisits       *int       `json:"maxVisits,omitempty"`
	ShortCodeLength *int       `json:"shortCodeLength,omitempty"`
	LongURL         string     `json:"longUrl"`
	CustomSlug      string     `json:"customSlug,omitempty"`
	Domain          string     `json:"domain,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	FindIfExists    bool       `json:"findIfExists,omitempty"`
	ValidateURL     bool       `json:"validateUrl"`
}

// NormalizeTag trims a tag and replaces inner spaces with dashes.
func NormalizeTag(tag string) string {
	return strings.ReplaceAll(strings.TrimSpace(tag), " ", "-")
}

// NormalizeTags normalizes every tag, dropping the ones left empty.
func NormalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		if normalized := NormalizeTag(tag); normalized != "" {
			result = append(result, normalized)
		}
	}
	return result
}

// Pagination describes a page of a paginated listing.
type Pagination struct {
	CurrentPage        int `json:"currentPage"`
	PagesCount         int `json:"pagesCount"`
	ItemsPerPage       int `json:"itemsPerPage"`
	ItemsInCurrentPage int `json:"itemsInCurrentPage"`
	TotalItems         int `json:"totalItems"`
}

// HasNext reports whether there is a page after the current one.
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.PagesCount
}

// HasPrev reports whether there is a page before the current one.
func (p Pagination) HasPrev() bool {
	return p.CurrentPage > 1
}

// ShortURLsList is a page of short URLs.
type ShortURLsList struct {
	Data       []ShortURL `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// OrderField is a field short URLs can be sorted by.
type OrderField string

const (
	OrderByDateCreated OrderField = "dateCreated"
	OrderByShortCode   OrderField = "shortCode"
	OrderByLongURL     OrderField = "longUrl"
	OrderByVisits      OrderField = "visits"
	OrderByTitle       OrderField = "title"
)

// OrderBy is a sort field plus direction.
type OrderBy struct {
	Field OrderField
	Desc  bool
}

// String renders the order in the "field-DIR" form the API expects.
func (o OrderBy) String() string {
	if o.Field == "" {
		return ""
	}
	if o.Desc {
		return string(o.Field) + "-DESC"
	}
	return string(o.Field) + "-ASC"
}
