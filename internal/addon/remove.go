// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package addon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"

	"github.com/craftops/addonsmith/internal/errutil"
)

// RemoveRequest names the packs to remove. All takes the full registry
// scan instead of explicit names. Confirmation is the transport layer's
// job; by the time a request reaches here it is final.
type RemoveRequest struct {
	Packs []string
	All   bool
}

// Remove runs the removal pipeline. Every step is best-effort except
// directory deletion: notifications and despawns degrade to warnings,
// but a failed delete aborts with a structural error.
//
// Despawn commands run before any file disappears because despawning by
// type needs the entity type still known to the running server.
func (s *Service) Remove(ctx context.Context, req RemoveRequest) (*RemoveReport, error) {
	report := &RemoveReport{}

	names, err := s.resolveTargets(req)
	if err != nil {
		report.fail("No packs selected for removal")
		return report, err
	}
	if len(names) == 0 {
		// Remove-all with nothing installed. Nothing to touch.
		report.succeed("No add-ons installed")
		return report, nil
	}

	s.notifyRemoval(ctx, names)
	s.despawnEntities(ctx, names)

	for _, name := range names {
		removed, err := s.deletePackDirs(name)
		if err != nil {
			report.fail("Failed to delete pack %s", name)
			return report, err
		}
		if removed {
			report.Removed++
			report.Packs = append(report.Packs, name)
		} else {
			report.NotFound = append(report.NotFound, name)
			report.Warnf("pack %s not found on disk", name)
		}
	}

	if report.Removed > 0 {
		if err := s.refs.Clear(); err != nil {
			report.fail("Failed to clear world pack references")
			return report, err
		}
		s.restartAfterRemoval(ctx, report)
	}

	report.succeed("Removed %d pack(s)", report.Removed)
	s.log.Info("removal complete",
		"requested", len(names),
		"removed", report.Removed,
		"not_found", len(report.NotFound),
	)
	return report, nil
}

// resolveTargets expands the request into concrete pack names. Names
// that would escape the pack roots are rejected outright. Remove-all
// may legitimately resolve to an empty set; an empty explicit
// selection is a caller mistake.
func (s *Service) resolveTargets(req RemoveRequest) ([]string, error) {
	if req.All {
		return s.registry.List()
	}

	var names []string
	for _, name := range req.Packs {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if trimmed != filepath.Base(trimmed) || trimmed == ".." || trimmed == "." {
			return nil, oops.With("name", name).Errorf("invalid pack name")
		}
		names = append(names, trimmed)
	}
	if len(names) == 0 {
		return nil, oops.Wrap(ErrNoPackagesSelected)
	}
	return names, nil
}

// notifyRemoval tells online players what is about to disappear.
func (s *Service) notifyRemoval(ctx context.Context, names []string) {
	msg := fmt.Sprintf("say Removing add-ons: %s", strings.Join(names, ", "))
	s.controller.RunConsoleCommand(ctx, msg)
}

// despawnEntities issues one kill command per unique entity identifier
// across the target packs, while the server is still running and the
// descriptor files still exist.
func (s *Service) despawnEntities(ctx context.Context, names []string) {
	seen := map[string]struct{}{}
	for _, name := range names {
		for _, id := range s.registry.EntityIdentifiers(name) {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			s.controller.RunConsoleCommand(ctx, fmt.Sprintf("kill @e[type=%s]", id))
		}
	}
}

// deletePackDirs removes the pack's behavior and/or resource directory.
// Returns true when at least one directory actually existed.
func (s *Service) deletePackDirs(name string) (bool, error) {
	removed := false
	for _, dir := range []string{s.registry.BehaviorDir(name), s.registry.ResourceDir(name)} {
		if _, err := os.Stat(dir); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, oops.With("dir", dir).Wrapf(err, "stat pack directory")
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, oops.With("dir", dir).Wrapf(err, "delete pack directory")
		}
		s.log.Info("pack directory deleted", "pack", name, "dir", dir)
		removed = true
	}
	return removed, nil
}

// restartAfterRemoval restarts and waits for readiness. Both are
// best-effort: the files are gone regardless of what the server does.
func (s *Service) restartAfterRemoval(ctx context.Context, report *RemoveReport) {
	if err := s.controller.Restart(ctx); err != nil {
		errutil.LogWarn(s.log, "server restart failed", err)
		report.Warnf("server restart failed: %v", err)
		return
	}
	if err := s.controller.AwaitReady(ctx, s.cfg.Container.ReadyTimeout); err != nil {
		errutil.LogWarn(s.log, "server not ready after removal", err)
		report.Warnf("server did not report ready: %v", err)
	}
}
