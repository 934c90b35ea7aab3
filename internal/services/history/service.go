// Package history records visit counts and pushed visits of each server and
// serves them back for charts.
package history

import (
	"sync"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/db"
	"github.com/j-veylop/shlink-dashboard-tui/internal/logger"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

// bucketMinutes is the minimum spacing of stored snapshots while the count is unchanged.
const bucketMinutes = 5

// Store is the persistence the service needs.
type Store interface {
	InsertVisitSnapshot(snapshot models.VisitSnapshot) error
	InsertVisitEvents(events []models.VisitEvent) error
	GetVisitsHistory(serverID string, timeRange models.TimeRange) (*models.VisitsHistory, error)
	GetRecentVisitEvents(serverID string, limit int) ([]models.VisitEvent, error)
	Prune(retention time.Duration) (int64, error)
}

var _ Store = (*db.DB)(nil)

type lastSnapshot struct {
	count     int
	timestamp time.Time
}

type cacheKey struct {
	serverID  string
	timeRange models.TimeRange
}

// Service records history and caches what it reads back.
type Service struct {
	mu    sync.RWMutex
	store Store
	now   func() time.Time

	lastSnapshots map[string]lastSnapshot
	cache         map[cacheKey]*models.VisitsHistory
}

// New creates a history service backed by store.
func New(store Store) *Service {
	return &Service{
		store:         store,
		now:           time.Now,
		lastSnapshots: make(map[string]lastSnapshot),
		cache:         make(map[cacheKey]*models.VisitsHistory),
	}
}

// RecordSnapshot stores the visits count of a server. Unchanged counts are
// stored at most once per bucket. It reports whether a row was written.
func (s *Service) RecordSnapshot(serverID string, count int) (bool, error) {
	now := s.now()

	s.mu.Lock()
	last, ok := s.lastSnapshots[serverID]
	if ok && last.count == count && now.Sub(last.timestamp) < bucketMinutes*time.Minute {
		s.mu.Unlock()
		return false, nil
	}
	s.lastSnapshots[serverID] = lastSnapshot{count: count, timestamp: now}
	s.invalidateLocked(serverID)
	s.mu.Unlock()

	err := s.store.InsertVisitSnapshot(models.VisitSnapshot{
		Timestamp:   now,
		ServerID:    serverID,
		VisitsCount: count,
	})
	if err != nil {
		s.mu.Lock()
		delete(s.lastSnapshots, serverID)
		s.mu.Unlock()
		return false, err
	}
	return true, nil
}

// RecordVisits stores a batch of pushed visits of a server.
func (s *Service) RecordVisits(serverID string, batch []models.CreatedVisit) error {
	if len(batch) == 0 {
		return nil
	}

	events := make([]models.VisitEvent, 0, len(batch))
	for _, cv := range batch {
		event := models.VisitEvent{
			ServerID:  serverID,
			Referer:   cv.Visit.Referer,
			UserAgent: cv.Visit.UserAgent,
			VisitedAt: cv.Visit.Date,
		}
		if cv.ShortURL != nil {
			event.ShortCode = cv.ShortURL.ShortCode
		}
		if event.VisitedAt.IsZero() {
			event.VisitedAt = s.now()
		}
		events = append(events, event)
	}

	if err := s.store.InsertVisitEvents(events); err != nil {
		return err
	}

	s.mu.Lock()
	s.invalidateLocked(serverID)
	s.mu.Unlock()
	return nil
}

// History returns the history of a server for a time range.
func (s *Service) History(serverID string, timeRange models.TimeRange) (*models.VisitsHistory, error) {
	key := cacheKey{serverID: serverID, timeRange: timeRange}

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	h, err := s.store.GetVisitsHistory(serverID, timeRange)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = h
	s.mu.Unlock()
	return h, nil
}

// RecentVisits returns the latest pushed visits of a server.
func (s *Service) RecentVisits(serverID string, limit int) ([]models.VisitEvent, error) {
	return s.store.GetRecentVisitEvents(serverID, limit)
}

// Prune removes history older than retention.
func (s *Service) Prune(retention time.Duration) error {
	removed, err := s.store.Prune(retention)
	if err != nil {
		return err
	}
	if removed > 0 {
		s.mu.Lock()
		clear(s.cache)
		s.mu.Unlock()
		logger.Debug("history pruned", "rows", removed)
	}
	return nil
}

func (s *Service) invalidateLocked(serverID string) {
	for key := range s.cache {
		if key.serverID == serverID {
			delete(s.cache, key)
		}
	}
}
