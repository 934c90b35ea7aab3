package db

const (
	// sqlTimeFormat is how timestamps are stored, always in UTC, so they
	// compare correctly against SQLite's datetime('now', ...).
	sqlTimeFormat = "2006-01-02 15:04:05"

	// defaultRecentEventsLimit caps GetRecentVisitEvents when no limit is given.
	defaultRecentEventsLimit = 50
)
