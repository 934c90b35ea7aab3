// Package visits keeps the visits overview of a server up to date from
// full refreshes and pushed visit batches.
package visits

import (
	"sync"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

// Event is a transition applied to a visits overview.
type Event interface {
	isVisitsEvent()
}

type (
	// RefreshStarted is applied when a refresh is dispatched.
	RefreshStarted struct{}

	// RefreshFailed is applied when a refresh could not be completed.
	RefreshFailed struct{}

	// RefreshCompleted carries the authoritative count returned by the server.
	RefreshCompleted struct {
		VisitsCount int
	}

	// VisitsCreated carries a batch of visits pushed by the server.
	VisitsCreated struct {
		Visits []models.CreatedVisit
	}
)

func (RefreshStarted) isVisitsEvent()   {}
func (RefreshFailed) isVisitsEvent()    {}
func (RefreshCompleted) isVisitsEvent() {}
func (VisitsCreated) isVisitsEvent()    {}

// Reduce returns the overview that results from applying event to state.
func Reduce(state models.VisitsOverview, event Event) models.VisitsOverview {
	switch e := event.(type) {
	case RefreshStarted:
		return models.VisitsOverview{Loading: true}
	case RefreshFailed:
		return models.VisitsOverview{Error: true}
	case RefreshCompleted:
		return models.VisitsOverview{VisitsCount: e.VisitsCount}
	case VisitsCreated:
		state.VisitsCount += len(e.Visits)
		return state
	default:
		return state
	}
}

// Overview owns a visits overview and applies transitions atomically.
type Overview struct {
	mu        sync.RWMutex
	state     models.VisitsOverview
	observers []func(models.VisitsOverview)
}

// NewOverview creates an overview with a zero count.
func NewOverview() *Overview {
	return &Overview{}
}

// OnChange registers fn to be called with the new overview after every transition.
// Observers run outside the lock, in the order they were registered.
func (o *Overview) OnChange(fn func(models.VisitsOverview)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// Apply applies event and returns the resulting overview.
func (o *Overview) Apply(event Event) models.VisitsOverview {
	o.mu.Lock()
	o.state = Reduce(o.state, event)
	state := o.state
	observers := make([]func(models.VisitsOverview), len(o.observers))
	copy(observers, o.observers)
	o.mu.Unlock()

	for _, fn := range observers {
		fn(state)
	}
	return state
}

// Snapshot returns a copy of the current overview.
func (o *Overview) Snapshot() models.VisitsOverview {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// RefreshStart marks a refresh as in flight.
func (o *Overview) RefreshStart() models.VisitsOverview {
	return o.Apply(RefreshStarted{})
}

// RefreshError marks the last refresh as failed.
func (o *Overview) RefreshError() models.VisitsOverview {
	return o.Apply(RefreshFailed{})
}

// RefreshComplete replaces the count with the one returned by the server.
func (o *Overview) RefreshComplete(visitsCount int) models.VisitsOverview {
	return o.Apply(RefreshCompleted{VisitsCount: visitsCount})
}

// AddCreated adds a batch of pushed visits to the count.
func (o *Overview) AddCreated(batch []models.CreatedVisit) models.VisitsOverview {
	return o.Apply(VisitsCreated{Visits: batch})
}
