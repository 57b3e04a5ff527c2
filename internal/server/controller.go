// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/craftops/addonsmith/internal/errutil"
	"github.com/craftops/addonsmith/internal/observability"
)

// Controller composes container lifecycle and remote console operations
// behind the three calls the orchestrators need.
type Controller struct {
	lifecycle    Lifecycle
	console      Console
	readyMarker  string
	pollInterval time.Duration
	tailLines    int
	log          *slog.Logger
}

// NewController wires a Controller. console may be nil, in which case
// every console command degrades to a logged warning.
func NewController(lifecycle Lifecycle, console Console, readyMarker string, pollInterval time.Duration, tailLines int, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	if tailLines <= 0 {
		tailLines = 100
	}
	return &Controller{
		lifecycle:    lifecycle,
		console:      console,
		readyMarker:  readyMarker,
		pollInterval: pollInterval,
		tailLines:    tailLines,
		log:          logger,
	}
}

// Restart issues a container restart and reports the immediate outcome.
// It does not wait for readiness; callers choose AwaitReady separately.
func (c *Controller) Restart(ctx context.Context) error {
	return c.lifecycle.Restart(ctx)
}

// AwaitReady polls recent server logs for the readiness marker at the
// configured interval until timeout. It never blocks past the timeout.
func (c *Controller) AwaitReady(ctx context.Context, timeout time.Duration) error {
	backoff := retry.WithMaxDuration(timeout, retry.NewConstant(c.pollInterval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		lines, err := c.lifecycle.TailLog(ctx, c.tailLines)
		if err != nil {
			return retry.RetryableError(err)
		}
		for _, line := range lines {
			if strings.Contains(line, c.readyMarker) {
				return nil
			}
		}
		return retry.RetryableError(fmt.Errorf("readiness marker %q not seen", c.readyMarker))
	})
	if err != nil {
		return oops.
			With("marker", c.readyMarker).
			With("timeout", timeout.String()).
			Wrapf(err, "server not ready")
	}
	c.log.Info("server ready", "marker", c.readyMarker)
	return nil
}

// RunConsoleCommand sends one command over the remote console. It never
// fails the caller: an unreachable console, a refused connection, or a
// stopped server all degrade to a logged warning and false.
func (c *Controller) RunConsoleCommand(ctx context.Context, command string) bool {
	if c.console == nil {
		c.log.Warn("console not configured, dropping command", "command", command)
		return false
	}

	resp, err := c.console.Run(ctx, command)
	if err != nil {
		observability.RecordConsoleFailure()
		errutil.LogWarn(c.log, "console command failed", oops.With("command", command).Wrap(err))
		return false
	}
	c.log.Debug("console command sent", "command", command, "response", resp)
	return true
}
