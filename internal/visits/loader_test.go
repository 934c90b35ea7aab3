package visits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

type fetcherFunc func(ctx context.Context) (int, error)

func (f fetcherFunc) GetVisitsOverview(ctx context.Context) (int, error) {
	return f(ctx)
}

func TestLoad_Success(t *testing.T) {
	o := NewOverview()
	o.AddCreated(createdVisits(5))

	var duringFetch models.VisitsOverview
	err := Load(context.Background(), fetcherFunc(func(context.Context) (int, error) {
		duringFetch = o.Snapshot()
		return 27, nil
	}), o)

	require.NoError(t, err)
	assert.Equal(t, models.VisitsOverview{Loading: true}, duringFetch)
	assert.Equal(t, models.VisitsOverview{VisitsCount: 27}, o.Snapshot())
}

func TestLoad_Failure(t *testing.T) {
	o := NewOverview()
	o.RefreshComplete(8)

	fetchErr := errors.New("boom")
	err := Load(context.Background(), fetcherFunc(func(context.Context) (int, error) {
		return 0, fetchErr
	}), o)

	require.ErrorIs(t, err, fetchErr)
	assert.Equal(t, models.VisitsOverview{Error: true}, o.Snapshot())
}

func TestLoad_LastResolutionWins(t *testing.T) {
	o := NewOverview()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = Load(context.Background(), fetcherFunc(func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		}), o)
	}()
	<-started

	require.NoError(t, Load(context.Background(), fetcherFunc(func(context.Context) (int, error) {
		return 2, nil
	}), o))
	assert.Equal(t, 2, o.Snapshot().VisitsCount)

	close(release)
	<-done
	assert.Equal(t, 1, o.Snapshot().VisitsCount)
}

func TestListen_FoldsBatchesUntilClosed(t *testing.T) {
	o := NewOverview()
	batches := make(chan []models.CreatedVisit)

	var received int
	var counts []int
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		Listen(context.Background(), batches, o, func(b []models.CreatedVisit, state models.VisitsOverview) {
			received += len(b)
			counts = append(counts, state.VisitsCount)
		})
	}()

	batches <- createdVisits(2)
	batches <- nil
	batches <- createdVisits(3)
	close(batches)

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after channel close")
	}

	assert.Equal(t, 5, o.Snapshot().VisitsCount)
	assert.Equal(t, 5, received)
	assert.Equal(t, []int{2, 5}, counts)
}

func TestListen_ReportsStateOfEachFold(t *testing.T) {
	o := NewOverview()
	o.RefreshComplete(98)
	batches := make(chan []models.CreatedVisit)

	states := make(chan models.VisitsOverview)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Listen(ctx, batches, o, func(_ []models.CreatedVisit, state models.VisitsOverview) {
		states <- state
	})

	batches <- createdVisits(3)
	first := <-states

	// A refresh landing after the fold must not change what was reported.
	o.RefreshComplete(10)
	batches <- createdVisits(1)
	second := <-states

	assert.Equal(t, 101, first.VisitsCount)
	assert.Equal(t, 11, second.VisitsCount)
}

func TestListen_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		Listen(ctx, make(chan []models.CreatedVisit), NewOverview(), nil)
	}()

	cancel()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}
