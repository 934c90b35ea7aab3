package models

import "time"

// VisitsOverview is the aggregated visits counter of a server.
// Loading and Error are never both set, and neither is set once a count settles.
type VisitsOverview struct {
	VisitsCount int
	Loading     bool
	Error       bool
}

// VisitLocation is the geolocation resolved for a visit.
type VisitLocation struct {
	CountryCode string  `json:"countryCode"`
	CountryName string  `json:"countryName"`
	RegionName  string  `json:"regionName"`
	CityName    string  `json:"cityName"`
	Timezone    string  `json:"timezone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	IsEmpty     bool    `json:"isEmpty"`
}

// Visit is a single recorded access to a short URL.
type Visit struct {
	Date          time.Time      `json:"date"`
	VisitLocation *VisitLocation `json:"visitLocation"`
	Referer       string         `json:"referer"`
	UserAgent     string         `json:"userAgent"`
}

// CreatedVisit is a visit pushed by the server right after it happened.
type CreatedVisit struct {
	ShortURL *ShortURL `json:"shortUrl"`
	Visit    Visit     `json:"visit"`
}

// VisitsList is a page of visits.
type VisitsList struct {
	Data       []Visit    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// VisitSnapshot is a stored visits count taken on a refresh.
type VisitSnapshot struct {
	Timestamp   time.Time
	ServerID    string
	VisitsCount int
}

// VisitEvent is a stored pushed visit.
type VisitEvent struct {
	VisitedAt time.Time
	ServerID  string
	ShortCode string
	Referer   string
	UserAgent string
	ID        int64
}

// ShortCodeVisits counts pushed visits per short code.
type ShortCodeVisits struct {
	ShortCode string
	Visits    int
}
