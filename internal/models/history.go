package models

import (
	"fmt"
	"time"
)

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all stored data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// SQLiteModifier returns the datetime('now', ?) modifier that starts the
// range, or "" for an unlimited range.
func (t TimeRange) SQLiteModifier() string {
	if t.Days() == 0 {
		return ""
	}
	return fmt.Sprintf("-%d days", t.Days())
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// HourlyVisits counts pushed visits received within one hour.
type HourlyVisits struct {
	Hour   time.Time
	Visits int
}

// VisitsHistory is what the overview chart needs for one server and range.
type VisitsHistory struct {
	Snapshots     []VisitSnapshot
	Hourly        []HourlyVisits
	TopShortCodes []ShortCodeVisits
	Range         TimeRange
}

// HasData reports whether any history was recorded.
func (h *VisitsHistory) HasData() bool {
	return len(h.Snapshots) > 0 || len(h.Hourly) > 0
}

// Growth returns how much the total visits count grew across the snapshots.
func (h *VisitsHistory) Growth() int {
	if len(h.Snapshots) < 2 {
		return 0
	}
	return h.Snapshots[len(h.Snapshots)-1].VisitsCount - h.Snapshots[0].VisitsCount
}

// Series returns the snapshot counts in chronological order.
func (h *VisitsHistory) Series() []float64 {
	series := make([]float64, len(h.Snapshots))
	for i, s := range h.Snapshots {
		series[i] = float64(s.VisitsCount)
	}
	return series
}

// PeakHour returns the hour with the most pushed visits.
func (h *VisitsHistory) PeakHour() (HourlyVisits, bool) {
	var peak HourlyVisits
	found := false
	for _, hv := range h.Hourly {
		if !found || hv.Visits > peak.Visits {
			peak = hv
			found = true
		}
	}
	return peak, found
}
