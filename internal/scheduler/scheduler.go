package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is a named periodic job. Run is invoked on each tick; a returned error
// is logged and the schedule continues.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives a set of tasks on independent tickers. A task slower than its
// interval skips ticks instead of stacking runs.
type Runner struct {
	Logger zerolog.Logger

	tasks []Task
}

func (r *Runner) Add(t Task) {
	r.tasks = append(r.tasks, t)
}

// Start launches one goroutine per task and blocks until ctx is cancelled and
// every in-flight run has returned.
func (r *Runner) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, t := range r.tasks {
		if t.Interval <= 0 {
			r.Logger.Warn().Str("task", t.Name).Msg("task has no interval, skipping")
			continue
		}
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			r.loop(ctx, t)
		}(t)
	}
	wg.Wait()
}

func (r *Runner) loop(ctx context.Context, t Task) {
	r.Logger.Info().Str("task", t.Name).Dur("interval", t.Interval).Msg("scheduler task started")
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	// Runs are serial per task; the ticker drops ticks that fire while a
	// run is still in progress.
	for {
		select {
		case <-ctx.Done():
			r.Logger.Info().Str("task", t.Name).Msg("scheduler task stopped")
			return
		case <-ticker.C:
			if err := t.Run(ctx); err != nil {
				r.Logger.Error().Err(err).Str("task", t.Name).Msg("scheduler task failed")
			}
		}
	}
}
