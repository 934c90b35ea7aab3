// Package refresh polls a server for its visits count and keeps an overview
// up to date with it.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/logger"
	"github.com/j-veylop/shlink-dashboard-tui/internal/visits"
)

// Event represents a refresh service event.
type Event struct {
	Error       error
	VisitsCount int
	Type        EventType
}

// EventType defines the type of refresh event.
type EventType int

const (
	// EventRefreshed indicates that the server returned its visits count.
	EventRefreshed EventType = iota
	// EventRefreshError indicates that a refresh failed.
	EventRefreshError
)

// Config holds configuration for the refresh service.
type Config struct {
	Interval time.Duration
	// Timeout bounds each refresh. Zero leaves it to the fetcher.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Interval: time.Minute,
	}
}

// Service refreshes an overview on a fixed interval.
type Service struct {
	fetcher   visits.Fetcher
	overview  *visits.Overview
	eventChan chan Event
	stopChan  chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	config    Config
}

// New creates a refresh service and starts polling right away.
func New(fetcher visits.Fetcher, overview *visits.Overview, config Config) *Service {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}

	s := &Service{
		fetcher:   fetcher,
		overview:  overview,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		config:    config,
	}

	s.wg.Add(1)
	go s.poll()

	return s
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Refresh loads the visits count once, outside the polling schedule.
func (s *Service) Refresh(ctx context.Context) error {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	recorder := &countRecorder{fetcher: s.fetcher}
	if err := visits.Load(ctx, recorder, s.overview); err != nil {
		s.sendEvent(Event{Type: EventRefreshError, Error: err})
		return err
	}

	s.sendEvent(Event{Type: EventRefreshed, VisitsCount: recorder.count})
	return nil
}

// poll runs the background polling goroutine.
func (s *Service) poll() {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Initial refresh
	if err := s.Refresh(ctx); err != nil {
		logger.Debug("initial visits refresh failed", "error", err)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				logger.Debug("visits refresh failed", "error", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops polling and waits for an in-flight refresh to return.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	return nil
}

// countRecorder keeps the count a fetch returned, the overview may have
// moved on by the time the event is sent.
type countRecorder struct {
	fetcher visits.Fetcher
	count   int
}

func (r *countRecorder) GetVisitsOverview(ctx context.Context) (int, error) {
	count, err := r.fetcher.GetVisitsOverview(ctx)
	r.count = count
	return count, err
}
