// Package engine drives the fuzzing loop: independent workers that each
// prepare an input, spawn the target through the configured supervision
// backend and drive the child to a determinate outcome.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkrein/sigfuzz/internal/backend"
	"github.com/mkrein/sigfuzz/internal/fuzz"
	"github.com/mkrein/sigfuzz/internal/logging"
	"github.com/mkrein/sigfuzz/internal/metrics"
)

// spawnFailureDelay throttles a lane after a launch error so a broken target
// does not busy-loop the engine.
const spawnFailureDelay = 500 * time.Millisecond

// Engine owns the shared fuzzing context and the worker lanes.
type Engine struct {
	ctx      *fuzz.Context
	backend  backend.Backend
	provider fuzz.InputProvider
	workers  int

	sleep func(context.Context, time.Duration)
}

// New constructs an engine running the given number of concurrent lanes.
func New(c *fuzz.Context, b backend.Backend, provider fuzz.InputProvider, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		ctx:      c,
		backend:  b,
		provider: provider,
		workers:  workers,
		sleep:    sleepWithContext,
	}
}

// Run initializes the backend once, then blocks until every worker lane has
// stopped, either because ctx was cancelled or because the input corpus is
// exhausted.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.backend.Init(e.ctx); err != nil {
		return fmt.Errorf("init backend: %w", err)
	}

	logging.Info().Int("workers", e.workers).Bool("replay", e.ctx.ReplayMode()).Msg("starting fuzzing run")

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			e.runWorker(ctx, worker)
		}(i)
	}
	wg.Wait()

	logging.Info().
		Uint64("runs", e.ctx.TotalRuns()).
		Uint64("crashes", e.ctx.TotalCrashes()).
		Uint64("unique_crashes", e.ctx.UniqueCrashes()).
		Msg("fuzzing run finished")
	return nil
}

// runWorker performs spawn -> supervise cycles until the lane is told to
// stop. A single child's misbehavior never terminates the lane; only
// cancellation and corpus exhaustion do.
func (e *Engine) runWorker(ctx context.Context, worker int) {
	run := &fuzz.Run{Worker: worker}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		run.ID = uuid.NewString()
		run.Pid = 0

		if err := e.provider.Next(run); err != nil {
			if errors.Is(err, fuzz.ErrExhausted) {
				logging.Info().Int("worker", worker).Msg("input corpus exhausted, stopping lane")
				return
			}
			logging.Error().Int("worker", worker).Err(err).Msg("could not prepare input")
			e.sleep(ctx, spawnFailureDelay)
			continue
		}

		if err := e.backend.Spawn(e.ctx, run); err != nil {
			metrics.IncSpawnFailure()
			logging.Error().Int("worker", worker).Str("run", run.ID).Err(err).Msg("launch failed")
			e.sleep(ctx, spawnFailureDelay)
			continue
		}

		e.backend.Supervise(e.ctx, run)

		e.ctx.AddRun()
		metrics.IncRun()
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
