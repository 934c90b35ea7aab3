package mercure

import (
	"context"
	"time"

	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

// batch groups visits from in into batches on out, flushing every interval.
// A zero interval forwards each visit as a batch of one. out is closed once
// in is closed.
func batch(ctx context.Context, in <-chan models.CreatedVisit, out chan<- []models.CreatedVisit, interval time.Duration) {
	defer close(out)

	send := func(visits []models.CreatedVisit) bool {
		select {
		case out <- visits:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if interval <= 0 {
		for visit := range in {
			if !send([]models.CreatedVisit{visit}) {
				return
			}
		}
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []models.CreatedVisit
	for {
		select {
		case visit, ok := <-in:
			if !ok {
				return
			}
			pending = append(pending, visit)
		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			if !send(pending) {
				return
			}
			pending = nil
		}
	}
}
