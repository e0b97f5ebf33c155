package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestRunnerRunsTasksUntilCancelled(t *testing.T) {
	var runs atomic.Int64
	r := &Runner{Logger: zerolog.Nop()}
	r.Add(Task{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancel")
	}

	if runs.Load() == 0 {
		t.Fatal("expected at least one run")
	}
}

func TestRunnerContinuesAfterTaskError(t *testing.T) {
	var runs atomic.Int64
	r := &Runner{Logger: zerolog.Nop()}
	r.Add(Task{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			runs.Add(1)
			return errors.New("boom")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if runs.Load() < 2 {
		t.Fatalf("expected repeated runs despite errors, got %d", runs.Load())
	}
}

func TestRunnerSkipsTaskWithoutInterval(t *testing.T) {
	r := &Runner{Logger: zerolog.Nop()}
	r.Add(Task{Name: "broken", Interval: 0, Run: func(ctx context.Context) error { return nil }})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Start must return immediately since no task was launched.
	doneCh := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(doneCh)
	}()
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("runner hung on a zero-interval task")
	}
}
