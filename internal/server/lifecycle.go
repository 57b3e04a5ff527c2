// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

// Package server wraps all interaction with the running game-server
// process: container lifecycle, readiness probing, and the remote
// console command channel.
package server

import (
	"context"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// Lifecycle abstracts container process control so orchestration logic
// can be tested with fakes.
type Lifecycle interface {
	// Restart issues a restart and returns its immediate outcome. It
	// does not wait for the server to become ready.
	Restart(ctx context.Context) error
	// TailLog returns the most recent log lines of the server process.
	TailLog(ctx context.Context, lines int) ([]string, error)
}

// DockerLifecycle drives a named container through the docker CLI.
type DockerLifecycle struct {
	container string
	log       *slog.Logger
}

// NewDockerLifecycle creates a Lifecycle for the named container.
func NewDockerLifecycle(container string, logger *slog.Logger) *DockerLifecycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &DockerLifecycle{container: container, log: logger}
}

// Restart runs `docker restart <container>`.
func (d *DockerLifecycle) Restart(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "docker", "restart", d.container).CombinedOutput()
	if err != nil {
		return oops.
			With("container", d.container).
			With("output", strings.TrimSpace(string(out))).
			Wrapf(err, "restart container")
	}
	d.log.Info("container restarted", "container", d.container)
	return nil
}

// TailLog runs `docker logs --tail <n>` and returns the combined output
// split into lines.
func (d *DockerLifecycle) TailLog(ctx context.Context, lines int) ([]string, error) {
	out, err := exec.CommandContext(ctx, "docker", "logs", "--tail", strconv.Itoa(lines), d.container).CombinedOutput()
	if err != nil {
		return nil, oops.
			With("container", d.container).
			With("output", strings.TrimSpace(string(out))).
			Wrapf(err, "tail container logs")
	}
	return strings.Split(strings.TrimRight(string(out), "\n"), "\n"), nil
}
