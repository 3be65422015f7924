package distance

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

const (
	DefaultConcurrency = 5
	DefaultWindowPause = 100 * time.Millisecond
)

// ProgressFunc is called after every pair settles. Calls are serialized.
type ProgressFunc func(completed, total int)

// PairResolver resolves a single pair and never fails
type PairResolver interface {
	Resolve(ctx context.Context, origin, destination models.Coordinate) float64
}

// Scheduler resolves batches in sequential windows of concurrent queries
type Scheduler struct {
	resolver PairResolver
	pause    time.Duration
}

func NewScheduler(resolver PairResolver, pause time.Duration) *Scheduler {
	if pause < 0 {
		pause = 0
	}
	return &Scheduler{
		resolver: resolver,
		pause:    pause,
	}
}

// ResolveBatch resolves every task against origin and returns one entry per
// task ID. Windows of concurrency tasks run one after another with a pause
// between them; inside a window results land in completion order.
func (s *Scheduler) ResolveBatch(
	ctx context.Context,
	origin models.Coordinate,
	tasks []models.DestinationTask,
	concurrency int,
	onProgress ProgressFunc,
) models.DistanceResult {
	result := make(models.DistanceResult, len(tasks))
	if len(tasks) == 0 {
		return result
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	total := len(tasks)
	completed := 0
	var mu sync.Mutex
	startTime := time.Now()

	for start := 0; start < total; start += concurrency {
		end := min(start+concurrency, total)

		var g errgroup.Group
		for i := start; i < end; i++ {
			id := models.TaskID(tasks[i].ID, i)
			destination := tasks[i].Destination

			g.Go(func() error {
				km := s.resolver.Resolve(ctx, origin, destination)

				mu.Lock()
				defer mu.Unlock()
				result.Set(id, km)
				completed++
				if onProgress != nil {
					onProgress(completed, total)
				}
				return nil
			})
		}
		_ = g.Wait()

		if end < total && s.pause > 0 {
			time.Sleep(s.pause)
		}
	}

	log.Debug().
		Int("pairs", total).
		Int("concurrency", concurrency).
		Dur("duration", time.Since(startTime)).
		Msg("Resolved distance batch")

	return result
}
