package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/db"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

func newTestService(t *testing.T) (*Service, *db.DB) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	return New(database), database
}

func TestRecordSnapshot_Buckets(t *testing.T) {
	s, _ := newTestService(t)

	now := time.Now()
	s.now = func() time.Time { return now }

	tests := []struct {
		name    string
		advance time.Duration
		count   int
		want    bool
	}{
		{"first", 0, 10, true},
		{"unchanged within bucket", time.Minute, 10, false},
		{"changed within bucket", time.Minute, 12, true},
		{"unchanged after bucket", 6 * time.Minute, 12, true},
	}

	for _, tt := range tests {
		now = now.Add(tt.advance)
		written, err := s.RecordSnapshot("a", tt.count)
		if err != nil {
			t.Fatalf("%s: RecordSnapshot failed: %v", tt.name, err)
		}
		if written != tt.want {
			t.Errorf("%s: written = %v, want %v", tt.name, written, tt.want)
		}
	}
}

func TestHistory_CachedUntilRecorded(t *testing.T) {
	s, _ := newTestService(t)

	if _, err := s.RecordSnapshot("a", 5); err != nil {
		t.Fatalf("RecordSnapshot failed: %v", err)
	}

	first, err := s.History("a", models.TimeRange24Hours)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(first.Snapshots) != 1 {
		t.Fatalf("Expected 1 snapshot, got %d", len(first.Snapshots))
	}

	again, _ := s.History("a", models.TimeRange24Hours)
	if again != first {
		t.Error("Expected cached history to be returned")
	}

	batch := []models.CreatedVisit{
		{ShortURL: &models.ShortURL{ShortCode: "abc"}, Visit: models.Visit{Referer: "ref", UserAgent: "ua"}},
		{Visit: models.Visit{Date: time.Now()}},
	}
	if err := s.RecordVisits("a", batch); err != nil {
		t.Fatalf("RecordVisits failed: %v", err)
	}

	fresh, _ := s.History("a", models.TimeRange24Hours)
	if fresh == first {
		t.Error("Expected cache to be invalidated after recording visits")
	}
	if len(fresh.TopShortCodes) != 2 {
		t.Errorf("Expected 2 short codes, got %+v", fresh.TopShortCodes)
	}

	recent, err := s.RecentVisits("a", 10)
	if err != nil {
		t.Fatalf("RecentVisits failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("Expected 2 recent visits, got %d", len(recent))
	}
}

func TestRecordVisits_Empty(t *testing.T) {
	s, _ := newTestService(t)
	if err := s.RecordVisits("a", nil); err != nil {
		t.Errorf("RecordVisits(nil) failed: %v", err)
	}
}

func TestPrune(t *testing.T) {
	s, database := newTestService(t)

	old := models.VisitSnapshot{ServerID: "a", VisitsCount: 1, Timestamp: time.Now().Add(-48 * time.Hour)}
	if err := database.InsertVisitSnapshot(old); err != nil {
		t.Fatal(err)
	}

	before, _ := s.History("a", models.TimeRangeAllTime)
	if len(before.Snapshots) != 1 {
		t.Fatalf("Expected 1 snapshot before prune, got %d", len(before.Snapshots))
	}

	if err := s.Prune(24 * time.Hour); err != nil {
		t.Fatalf("Prune failed: %v", err)
	}

	after, _ := s.History("a", models.TimeRangeAllTime)
	if after.HasData() {
		t.Error("Expected history to be empty after prune")
	}
}
