package visits

import (
	"context"
	"fmt"

	"github.com/j-veylop/shlink-dashboard-tui/internal/logger"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

// Fetcher returns the total visits count known by a server.
type Fetcher interface {
	GetVisitsOverview(ctx context.Context) (int, error)
}

// Load refreshes o from f. It is not retried on failure; the error is
// returned to the caller and only a flag is kept in the overview.
func Load(ctx context.Context, f Fetcher, o *Overview) error {
	o.RefreshStart()

	count, err := f.GetVisitsOverview(ctx)
	if err != nil {
		logger.Warn("failed to load visits overview", "error", err)
		o.RefreshError()
		return fmt.Errorf("failed to load visits overview: %w", err)
	}

	o.RefreshComplete(count)
	return nil
}

// Listen folds every batch received on batches into o until ctx is done or
// batches is closed. onBatch, when not nil, is called after each fold with
// the overview that fold produced.
func Listen(ctx context.Context, batches <-chan []models.CreatedVisit, o *Overview,
	onBatch func([]models.CreatedVisit, models.VisitsOverview),
) {
	for {
		select {
		case batch, ok := <-batches:
			if !ok {
				return
			}
			if len(batch) == 0 {
				continue
			}
			state := o.AddCreated(batch)
			if onBatch != nil {
				onBatch(batch, state)
			}

		case <-ctx.Done():
			return
		}
	}
}
