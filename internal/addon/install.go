// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package addon

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"

	"github.com/craftops/addonsmith/internal/config"
	"github.com/craftops/addonsmith/internal/errutil"
	"github.com/craftops/addonsmith/internal/pack"
	"github.com/craftops/addonsmith/internal/world"
)

// Install runs the whole install pipeline for an uploaded archive.
//
// The returned report always describes the outcome; the error mirrors
// structural failures (bad archive, incomplete manifests, filesystem
// trouble) so callers can match sentinels with errors.Is. Operational
// failures (restart, console) become report warnings, never errors.
// The uploaded file and the scratch directory are removed on every path.
func (s *Service) Install(ctx context.Context, archivePath string) (*InstallReport, error) {
	report := &InstallReport{}

	defer func() {
		if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
			errutil.LogWarn(s.log, "failed to remove uploaded archive", err)
		}
		if err := os.RemoveAll(s.cfg.ScratchDir); err != nil {
			errutil.LogWarn(s.log, "failed to remove scratch directory", err)
		}
	}()

	base := filepath.Base(archivePath)
	if !strings.EqualFold(filepath.Ext(base), ArchiveExt) {
		err := oops.With("file", base).Wrap(ErrUnsupportedFileType)
		report.fail("Only %s files are supported", ArchiveExt)
		return report, err
	}

	name, err := pack.SanitizeName(strings.TrimSuffix(base, filepath.Ext(base)))
	if err != nil {
		report.fail("Archive name yields no usable pack name")
		return report, oops.With("file", base).Wrap(ErrUnsupportedFileType)
	}
	report.Pack = name

	classification, err := s.inspector.Inspect(archivePath, s.cfg.ScratchDir)
	if err != nil {
		report.fail("Failed to inspect %s", base)
		return report, err
	}

	s.warnOnDowngrade(report, name, classification.Data)

	if err := s.installer.Install(name, classification.Data, classification.Resources); err != nil {
		report.fail("Failed to install %s", base)
		return report, err
	}

	// Identity is read back from the destination, not the scratch dir,
	// so a botched copy surfaces here.
	behaviorManifest, err := pack.ReadManifest(s.installer.BehaviorDir(name))
	if err != nil {
		report.fail("Installed behavior pack has no readable manifest")
		return report, err
	}
	resourceManifest, err := pack.ReadManifest(s.installer.ResourceDir(name))
	if err != nil {
		report.fail("Installed resource pack has no readable manifest")
		return report, err
	}

	report.Behavior = world.PackRef{PackID: behaviorManifest.Header.UUID, Version: behaviorManifest.Header.Version}
	report.Resource = world.PackRef{PackID: resourceManifest.Header.UUID, Version: resourceManifest.Header.Version}

	if err := s.refs.Activate(report.Behavior, report.Resource); err != nil {
		report.fail("Failed to write world pack references")
		return report, err
	}

	changed, err := world.EnsureExperimentalGameplay(s.cfg.PropertiesPath())
	if err != nil {
		report.fail("Failed to update server.properties")
		return report, err
	}
	if changed {
		s.log.Info("enabled experimental gameplay", "path", s.cfg.PropertiesPath())
	}

	s.restartAfterInstall(ctx, report)

	report.Entities = s.registry.EntityIdentifiers(name)
	for _, id := range report.Entities {
		report.Summon = append(report.Summon, "/summon "+id)
	}

	report.succeed("Successfully installed %s", name)
	s.log.Info("install complete",
		"pack", name,
		"entities", len(report.Entities),
		"warnings", len(report.Warnings),
	)
	return report, nil
}

// warnOnDowngrade compares the incoming behavior manifest against an
// existing install of the same name. Last write wins regardless; the
// warning just tells the operator it happened.
func (s *Service) warnOnDowngrade(report *InstallReport, name, dataDir string) {
	existing, err := pack.ReadManifest(s.installer.BehaviorDir(name))
	if err != nil {
		return
	}
	incoming, err := pack.ReadManifest(dataDir)
	if err != nil {
		return
	}
	if incoming.Header.Version.Compare(existing.Header.Version) < 0 {
		report.Warnf("overwriting %s %s with older version %s",
			name, existing.Header.Version, incoming.Header.Version)
	}
}

// restartAfterInstall restarts per the configured policy. Restart
// failures mean the server wasn't running; the pack files are installed
// either way, so this only warns.
func (s *Service) restartAfterInstall(ctx context.Context, report *InstallReport) {
	if err := s.controller.Restart(ctx); err != nil {
		errutil.LogWarn(s.log, "server restart failed", err)
		report.Warnf("server restart failed: %v", err)
		return
	}
	if s.cfg.RestartPolicy != config.RestartAwait {
		return
	}
	if err := s.controller.AwaitReady(ctx, s.cfg.Container.ReadyTimeout); err != nil {
		errutil.LogWarn(s.log, "server not ready after install", err)
		report.Warnf("server did not report ready: %v", err)
	}
}
