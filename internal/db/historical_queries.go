package db

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

var timeFormats = []string{
	sqlTimeFormat,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
}

// parseTimeString parses a stored timestamp, which is always UTC.
func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GetHourlyVisits counts pushed visits per hour for the last hours.
func (db *DB) GetHourlyVisits(serverID string, hours int) ([]models.HourlyVisits, error) {
	rows, err := db.QueryContext(context.Background(), `
		SELECT strftime('%Y-%m-%d %H:00:00', visited_at) AS hour, COUNT(*)
		FROM visit_events
		WHERE server_id = ? AND visited_at >= datetime('now', ?)
		GROUP BY hour
		ORDER BY hour ASC
	`, serverID, fmt.Sprintf("-%d hours", hours))
	if err != nil {
		return nil, fmt.Errorf("failed to query hourly visits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var hourly []models.HourlyVisits
	for rows.Next() {
		var hv models.HourlyVisits
		var hour string
		if err := rows.Scan(&hour, &hv.Visits); err != nil {
			return nil, fmt.Errorf("failed to scan hourly visits: %w", err)
		}
		hv.Hour, _ = parseTimeString(hour)
		hourly = append(hourly, hv)
	}

	return hourly, rows.Err()
}

// GetVisitsHistory assembles everything the overview chart shows for a server.
func (db *DB) GetVisitsHistory(serverID string, timeRange models.TimeRange) (*models.VisitsHistory, error) {
	snapshots, err := db.GetVisitSnapshots(serverID, timeRange)
	if err != nil {
		return nil, err
	}

	hours := timeRange.Days() * 24
	if hours == 0 {
		hours = 24 * 365
	}
	hourly, err := db.GetHourlyVisits(serverID, hours)
	if err != nil {
		return nil, err
	}

	top, err := db.CountVisitEventsByShortCode(serverID, timeRange, 5)
	if err != nil {
		return nil, err
	}

	return &models.VisitsHistory{
		Snapshots:     snapshots,
		Hourly:        hourly,
		TopShortCodes: top,
		Range:         timeRange,
	}, nil
}
