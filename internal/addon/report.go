// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

// Package addon composes the install and removal pipelines.
package addon

import (
	"errors"
	"fmt"

	"github.com/craftops/addonsmith/internal/world"
)

// ArchiveExt is the only accepted upload extension.
const ArchiveExt = ".mcaddon"

// ErrUnsupportedFileType is returned for uploads that are not .mcaddon
// archives.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrNoPackagesSelected is returned when a removal resolves to an empty
// target set.
var ErrNoPackagesSelected = errors.New("no packs selected for removal")

// Report is the structured outcome every orchestration returns. Expected
// failure modes surface here rather than as bare errors; operational
// hiccups (restart, console) land in Warnings.
type Report struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Warnings []string `json:"warnings,omitempty"`
}

// Warnf appends a formatted warning.
func (r *Report) Warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// fail marks the report failed, keeping accumulated warnings.
func (r *Report) fail(format string, args ...any) {
	r.Success = false
	r.Message = fmt.Sprintf(format, args...)
}

// succeed marks the report successful, keeping accumulated warnings.
func (r *Report) succeed(format string, args ...any) {
	r.Success = true
	r.Message = fmt.Sprintf(format, args...)
}

// InstallReport is the result of one install orchestration.
type InstallReport struct {
	Report
	Pack     string        `json:"pack,omitempty"`
	Behavior world.PackRef `json:"behavior,omitempty"`
	Resource world.PackRef `json:"resource,omitempty"`
	// Entities lists the identifiers declared by the installed pack.
	Entities []string `json:"entities,omitempty"`
	// Summon carries ready-to-paste summon commands for the entities.
	Summon []string `json:"summon,omitempty"`
}

// RemoveReport is the result of one removal orchestration. Removed
// counts packs that had at least one directory actually deleted, which
// is distinct from the number of packs requested.
type RemoveReport struct {
	Report
	Removed  int      `json:"removed"`
	Packs    []string `json:"packs,omitempty"`
	NotFound []string `json:"not_found,omitempty"`
}
