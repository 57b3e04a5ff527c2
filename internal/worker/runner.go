// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

// Package worker serializes mutating jobs. Install and removal both
// rewrite the same pack roots and world files, so at most one mutating
// job may run at a time; callers block until their turn.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/craftops/addonsmith/internal/errutil"
)

// Runner executes jobs one at a time in submission order.
type Runner struct {
	mu  sync.Mutex
	log *slog.Logger

	stateMu sync.Mutex
	current string
}

// NewRunner creates a Runner.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{log: logger}
}

// Do runs fn under the runner's lock and returns the job ID along with
// fn's error. It blocks while an earlier job is still running, but bails
// out without running fn if ctx is cancelled first.
func (r *Runner) Do(ctx context.Context, name string, fn func(context.Context) error) (string, error) {
	id := ulid.Make().String()

	acquired := make(chan struct{})
	go func() {
		r.mu.Lock()
		close(acquired)
	}()

	select {
	case <-ctx.Done():
		// The goroutine above still holds or will hold the lock;
		// release it once acquired so later jobs are not wedged.
		go func() {
			<-acquired
			r.mu.Unlock()
		}()
		return id, ctx.Err()
	case <-acquired:
	}
	defer r.mu.Unlock()

	r.setCurrent(name)
	defer r.setCurrent("")

	start := time.Now()
	r.log.Info("job started", "job_id", id, "job", name)

	err := fn(ctx)

	elapsed := time.Since(start)
	if err != nil {
		errutil.LogError(r.log.With("job_id", id, "job", name, "duration", elapsed.String()), "job failed", err)
		return id, err
	}
	r.log.Info("job finished", "job_id", id, "job", name, "duration", elapsed.String())
	return id, nil
}

// Current returns the name of the running job, or "" when idle.
func (r *Runner) Current() string {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	return r.current
}

func (r *Runner) setCurrent(name string) {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()
	r.current = name
}
