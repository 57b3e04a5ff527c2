// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

// Package errutil provides oops-aware structured error logging helpers.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error at ERROR level with structured context if it's
// an oops error. For oops errors, the message, code, and context map are
// extracted into attributes. Standard errors log the error string only.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, attrs(err)...)
}

// LogWarn logs an error at WARN level. Used for best-effort operations
// whose failure must not abort the surrounding orchestration.
func LogWarn(logger *slog.Logger, msg string, err error) {
	logger.Warn(msg, attrs(err)...)
}

func attrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}
	out := []any{"error", oopsErr.Error()}
	if code := oopsErr.Code(); code != nil {
		out = append(out, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		out = append(out, "context", ctx)
	}
	return out
}
