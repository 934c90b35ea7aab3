package models

import (
	"testing"
	"time"
)

func TestTimeRange_String(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want string
	}{
		{"24Hours", TimeRange24Hours, "24 Hours"},
		{"7Days", TimeRange7Days, "7 Days"},
		{"30Days", TimeRange30Days, "30 Days"},
		{"AllTime", TimeRangeAllTime, "All Time"},
		{"Unknown", TimeRange(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.String(); got != tt.want {
				t.Errorf("TimeRange.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Days(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want int
	}{
		{"24Hours", TimeRange24Hours, 1},
		{"7Days", TimeRange7Days, 7},
		{"30Days", TimeRange30Days, 30},
		{"AllTime", TimeRangeAllTime, 0},
		{"Unknown", TimeRange(999), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Days(); got != tt.want {
				t.Errorf("TimeRange.Days() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Next(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want TimeRange
	}{
		{"24Hours -> 7Days", TimeRange24Hours, TimeRange7Days},
		{"7Days -> 30Days", TimeRange7Days, TimeRange30Days},
		{"30Days -> AllTime", TimeRange30Days, TimeRangeAllTime},
		{"AllTime -> 24Hours", TimeRangeAllTime, TimeRange24Hours},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Next(); got != tt.want {
				t.Errorf("TimeRange.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_SQLiteModifier(t *testing.T) {
	tests := []struct {
		tr   TimeRange
		want string
	}{
		{TimeRange24Hours, "-1 days"},
		{TimeRange7Days, "-7 days"},
		{TimeRange30Days, "-30 days"},
		{TimeRangeAllTime, ""},
	}
	for _, tt := range tests {
		t.Run(tt.tr.String(), func(t *testing.T) {
			if got := tt.tr.SQLiteModifier(); got != tt.want {
				t.Errorf("SQLiteModifier() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVisitsHistory(t *testing.T) {
	empty := &VisitsHistory{}
	if empty.HasData() {
		t.Error("empty history should have no data")
	}
	if empty.Growth() != 0 {
		t.Errorf("Growth() = %d, want 0", empty.Growth())
	}
	if _, ok := empty.PeakHour(); ok {
		t.Error("PeakHour() should report nothing for empty history")
	}

	now := time.Now()
	h := &VisitsHistory{
		Snapshots: []VisitSnapshot{
			{Timestamp: now.Add(-2 * time.Hour), VisitsCount: 100},
			{Timestamp: now.Add(-time.Hour), VisitsCount: 110},
			{Timestamp: now, VisitsCount: 125},
		},
		Hourly: []HourlyVisits{
			{Hour: now.Add(-2 * time.Hour), Visits: 3},
			{Hour: now.Add(-time.Hour), Visits: 9},
			{Hour: now, Visits: 9},
		},
	}

	if !h.HasData() {
		t.Error("HasData() = false")
	}
	if h.Growth() != 25 {
		t.Errorf("Growth() = %d, want 25", h.Growth())
	}
	if got := h.Series(); len(got) != 3 || got[0] != 100 || got[2] != 125 {
		t.Errorf("Series() = %v", got)
	}

	peak, ok := h.PeakHour()
	if !ok || peak.Visits != 9 || !peak.Hour.Equal(now.Add(-time.Hour)) {
		t.Errorf("PeakHour() = %+v, %v; want the first hour with 9 visits", peak, ok)
	}
}
