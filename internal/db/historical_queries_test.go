package db

import (
	"testing"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

func TestParseTimeString(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"2024-03-01 10:20:30", true},
		{"2024-03-01T10:20:30Z", true},
		{"2024-03-01T10:20:30", true},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseTimeString(tt.input)
			if ok != tt.ok {
				t.Fatalf("parseTimeString(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)) {
				t.Errorf("parseTimeString(%q) = %v", tt.input, got)
			}
		})
	}
}

func TestGetHourlyVisits(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	hour := time.Now().UTC().Truncate(time.Hour)
	events := []models.VisitEvent{
		{ServerID: "a", ShortCode: "x", VisitedAt: hour.Add(-time.Hour)},
		{ServerID: "a", ShortCode: "x", VisitedAt: hour},
		{ServerID: "a", ShortCode: "y", VisitedAt: hour},
		{ServerID: "a", ShortCode: "z", VisitedAt: hour.Add(-10 * time.Hour)},
		{ServerID: "b", ShortCode: "x", VisitedAt: hour},
	}
	if err := db.InsertVisitEvents(events); err != nil {
		t.Fatalf("InsertVisitEvents failed: %v", err)
	}

	hourly, err := db.GetHourlyVisits("a", 3)
	if err != nil {
		t.Fatalf("GetHourlyVisits failed: %v", err)
	}
	if len(hourly) != 2 {
		t.Fatalf("Expected 2 hours, got %+v", hourly)
	}
	if !hourly[0].Hour.Equal(hour.Add(-time.Hour)) || hourly[0].Visits != 1 {
		t.Errorf("Unexpected first hour: %+v", hourly[0])
	}
	if !hourly[1].Hour.Equal(hour) || hourly[1].Visits != 2 {
		t.Errorf("Unexpected second hour: %+v", hourly[1])
	}
}

func TestGetVisitsHistory(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now()
	_ = db.InsertVisitSnapshot(models.VisitSnapshot{ServerID: "a", VisitsCount: 100, Timestamp: now.Add(-2 * time.Hour)})
	_ = db.InsertVisitSnapshot(models.VisitSnapshot{ServerID: "a", VisitsCount: 130, Timestamp: now})
	_ = db.InsertVisitEvents([]models.VisitEvent{{ServerID: "a", ShortCode: "abc", VisitedAt: now}})

	history, err := db.GetVisitsHistory("a", models.TimeRange7Days)
	if err != nil {
		t.Fatalf("GetVisitsHistory failed: %v", err)
	}

	if !history.HasData() {
		t.Fatal("Expected history data")
	}
	if history.Growth() != 30 {
		t.Errorf("Expected growth 30, got %d", history.Growth())
	}
	if len(history.TopShortCodes) != 1 || history.TopShortCodes[0].ShortCode != "abc" {
		t.Errorf("Unexpected top short codes: %+v", history.TopShortCodes)
	}
	if history.Range != models.TimeRange7Days {
		t.Errorf("Expected range 7 days, got %v", history.Range)
	}

	empty, err := db.GetVisitsHistory("missing", models.TimeRangeAllTime)
	if err != nil {
		t.Fatalf("GetVisitsHistory failed: %v", err)
	}
	if empty.HasData() {
		t.Error("Expected no data for unknown server")
	}
}
