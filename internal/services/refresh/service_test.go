package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/visits"
)

type fakeFetcher struct {
	count atomic.Int64
	calls atomic.Int32
	err   error
}

func (f *fakeFetcher) GetVisitsOverview(ctx context.Context) (int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return int(f.count.Load()), nil
}

func waitEvent(t *testing.T, s *Service, want EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("no event of type %v", want)
		}
	}
}

func TestNew_InitialRefresh(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.count.Store(42)
	overview := visits.NewOverview()

	s := New(fetcher, overview, Config{Interval: time.Hour})
	defer func() { _ = s.Close() }()

	ev := waitEvent(t, s, EventRefreshed)
	if ev.VisitsCount != 42 {
		t.Errorf("VisitsCount = %d, want 42", ev.VisitsCount)
	}
	if got := overview.Snapshot(); got.VisitsCount != 42 || got.Loading || got.Error {
		t.Errorf("overview = %+v", got)
	}
}

func TestPolling(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := New(fetcher, visits.NewOverview(), Config{Interval: 20 * time.Millisecond})
	defer func() { _ = s.Close() }()

	deadline := time.Now().Add(2 * time.Second)
	for fetcher.calls.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d refreshes happened", fetcher.calls.Load())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRefresh_Error(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("unreachable")}
	overview := visits.NewOverview()

	s := New(fetcher, overview, Config{Interval: time.Hour})
	defer func() { _ = s.Close() }()

	ev := waitEvent(t, s, EventRefreshError)
	if !errors.Is(ev.Error, fetcher.err) {
		t.Errorf("Error = %v, want wrapped %v", ev.Error, fetcher.err)
	}

	if err := s.Refresh(context.Background()); err == nil {
		t.Error("Refresh() should fail")
	}
	if got := overview.Snapshot(); !got.Error || got.VisitsCount != 0 {
		t.Errorf("overview = %+v, want error state", got)
	}
}

func TestNew_DefaultInterval(t *testing.T) {
	s := New(&fakeFetcher{}, visits.NewOverview(), Config{})
	defer func() { _ = s.Close() }()

	if s.config.Interval != DefaultConfig().Interval {
		t.Errorf("Interval = %v, want default", s.config.Interval)
	}
}

func TestClose_Idempotent(t *testing.T) {
	s := New(&fakeFetcher{}, visits.NewOverview(), Config{Interval: time.Hour})
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}
