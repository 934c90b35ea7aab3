package models

// TagStats holds the usage counters of a tag.
type TagStats struct {
	Tag            string `json:"tag"`
	ShortURLsCount int    `json:"shortUrlsCount"`
	VisitsCount    int    `json:"visitsCount"`
}
