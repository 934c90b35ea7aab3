package db

import (
	"testing"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

func TestInsertAndGetVisitSnapshots(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now()
	snapshots := []models.VisitSnapshot{
		{ServerID: "a", VisitsCount: 10, Timestamp: now.Add(-48 * time.Hour)},
		{ServerID: "a", VisitsCount: 20, Timestamp: now.Add(-time.Hour)},
		{ServerID: "a", VisitsCount: 25},
		{ServerID: "b", VisitsCount: 99, Timestamp: now.Add(-time.Hour)},
	}
	for _, s := range snapshots {
		if err := db.InsertVisitSnapshot(s); err != nil {
			t.Fatalf("InsertVisitSnapshot failed: %v", err)
		}
	}

	day, err := db.GetVisitSnapshots("a", models.TimeRange24Hours)
	if err != nil {
		t.Fatalf("GetVisitSnapshots failed: %v", err)
	}
	if len(day) != 2 {
		t.Fatalf("Expected 2 snapshots in the last day, got %d", len(day))
	}
	if day[0].VisitsCount != 20 || day[1].VisitsCount != 25 {
		t.Errorf("Expected snapshots oldest first, got %+v", day)
	}
	if day[1].Timestamp.IsZero() {
		t.Error("Expected a default timestamp")
	}

	all, err := db.GetVisitSnapshots("a", models.TimeRangeAllTime)
	if err != nil {
		t.Fatalf("GetVisitSnapshots failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 snapshots overall, got %d", len(all))
	}

	if got := all[0].Timestamp; !got.Equal(now.Add(-48 * time.Hour).Truncate(time.Second)) {
		t.Errorf("Timestamp did not round-trip: %v", got)
	}
}

func TestInsertVisitEvents(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.InsertVisitEvents(nil); err != nil {
		t.Fatalf("InsertVisitEvents(nil) failed: %v", err)
	}

	now := time.Now()
	events := []models.VisitEvent{
		{ServerID: "a", ShortCode: "abc", Referer: "https://google.com", UserAgent: "curl", VisitedAt: now.Add(-2 * time.Minute)},
		{ServerID: "a", ShortCode: "abc", VisitedAt: now.Add(-time.Minute)},
		{ServerID: "a", ShortCode: "def", VisitedAt: now},
		{ServerID: "b", ShortCode: "abc", VisitedAt: now},
	}
	if err := db.InsertVisitEvents(events); err != nil {
		t.Fatalf("InsertVisitEvents failed: %v", err)
	}

	recent, err := db.GetRecentVisitEvents("a", 2)
	if err != nil {
		t.Fatalf("GetRecentVisitEvents failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(recent))
	}
	if recent[0].ShortCode != "def" {
		t.Errorf("Expected newest event first, got %s", recent[0].ShortCode)
	}
	if recent[0].ID == 0 {
		t.Error("Expected event ID to be set")
	}

	all, _ := db.GetRecentVisitEvents("a", 0)
	if len(all) != 3 {
		t.Fatalf("Expected 3 events with default limit, got %d", len(all))
	}
	if all[2].Referer != "https://google.com" || all[2].UserAgent != "curl" {
		t.Errorf("Unexpected oldest event: %+v", all[2])
	}
}

func TestCountVisitEventsByShortCode(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now()
	events := []models.VisitEvent{
		{ServerID: "a", ShortCode: "abc", VisitedAt: now},
		{ServerID: "a", ShortCode: "abc", VisitedAt: now},
		{ServerID: "a", ShortCode: "def", VisitedAt: now},
		{ServerID: "a", ShortCode: "old", VisitedAt: now.Add(-72 * time.Hour)},
		{ServerID: "a", ShortCode: "old", VisitedAt: now.Add(-72 * time.Hour)},
		{ServerID: "a", ShortCode: "old", VisitedAt: now.Add(-72 * time.Hour)},
	}
	if err := db.InsertVisitEvents(events); err != nil {
		t.Fatalf("InsertVisitEvents failed: %v", err)
	}

	day, err := db.CountVisitEventsByShortCode("a", models.TimeRange24Hours, 10)
	if err != nil {
		t.Fatalf("CountVisitEventsByShortCode failed: %v", err)
	}
	want := []models.ShortCodeVisits{{ShortCode: "abc", Visits: 2}, {ShortCode: "def", Visits: 1}}
	if len(day) != len(want) {
		t.Fatalf("Expected %v, got %v", want, day)
	}
	for i := range want {
		if day[i] != want[i] {
			t.Errorf("Row %d: expected %+v, got %+v", i, want[i], day[i])
		}
	}

	top, _ := db.CountVisitEventsByShortCode("a", models.TimeRangeAllTime, 1)
	if len(top) != 1 || top[0].ShortCode != "old" || top[0].Visits != 3 {
		t.Errorf("Expected old with 3 visits on top, got %+v", top)
	}
}

func TestPrune(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now()
	_ = db.InsertVisitSnapshot(models.VisitSnapshot{ServerID: "a", VisitsCount: 1, Timestamp: now.Add(-40 * 24 * time.Hour)})
	_ = db.InsertVisitSnapshot(models.VisitSnapshot{ServerID: "a", VisitsCount: 2, Timestamp: now})
	_ = db.InsertVisitEvents([]models.VisitEvent{
		{ServerID: "a", ShortCode: "x", VisitedAt: now.Add(-40 * 24 * time.Hour)},
		{ServerID: "a", ShortCode: "y", VisitedAt: now},
	})

	removed, err := db.Prune(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 pruned rows, got %d", removed)
	}

	snapshots, _ := db.GetVisitSnapshots("a", models.TimeRangeAllTime)
	if len(snapshots) != 1 || snapshots[0].VisitsCount != 2 {
		t.Errorf("Unexpected snapshots after prune: %+v", snapshots)
	}

	if removed, _ := db.Prune(0); removed != 0 {
		t.Errorf("Prune(0) should be a no-op, removed %d", removed)
	}
}
