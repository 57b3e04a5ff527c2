// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package addon

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/craftops/addonsmith/internal/archive"
	"github.com/craftops/addonsmith/internal/config"
	"github.com/craftops/addonsmith/internal/pack"
	"github.com/craftops/addonsmith/internal/server"
	"github.com/craftops/addonsmith/internal/world"
)

// stubLifecycle scripts restart outcomes and always reports readiness.
type stubLifecycle struct {
	mu         sync.Mutex
	restartErr error
	restarts   int
	ready      bool
}

func (f *stubLifecycle) Restart(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restarts++
	return f.restartErr
}

func (f *stubLifecycle) TailLog(_ context.Context, _ int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready {
		return []string{"[INFO] Server started."}, nil
	}
	return []string{"still starting"}, nil
}

// stubConsole records every command sent through the controller.
type stubConsole struct {
	mu       sync.Mutex
	err      error
	commands []string
}

func (f *stubConsole) Run(_ context.Context, command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.commands = append(f.commands, command)
	return "ok", nil
}

func (f *stubConsole) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.commands...)
}

// harness bundles a Service wired against a temp data dir and stubs.
type harness struct {
	svc       *Service
	cfg       *config.Config
	lifecycle *stubLifecycle
	console   *stubConsole
	refs      *world.References
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.DataDir = filepath.Join(root, "data")
	cfg.UploadDir = filepath.Join(root, "uploads")
	cfg.ScratchDir = filepath.Join(root, "scratch")
	cfg.WorldName = "Overworld"
	cfg.Container.ReadyTimeout = 100 * time.Millisecond
	cfg.Container.PollInterval = 5 * time.Millisecond

	for _, dir := range []string{
		cfg.BehaviorRoot(),
		cfg.ResourceRoot(),
		filepath.Join(cfg.WorldsRoot(), cfg.WorldName),
		cfg.UploadDir,
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	lc := &stubLifecycle{ready: true}
	console := &stubConsole{}
	ctrl := server.NewController(lc, console,
		cfg.Container.ReadyMarker, cfg.Container.PollInterval, cfg.Container.TailLines, nil)

	registry, err := pack.NewRegistry(cfg.BehaviorRoot(), cfg.ResourceRoot(),
		cfg.BehaviorExclude, cfg.ResourceExclude, nil)
	require.NoError(t, err)

	refs := world.NewReferences(cfg.WorldsRoot(), cfg.WorldName, nil)

	svc := NewService(&cfg,
		archive.NewInspector(nil, nil),
		pack.NewInstaller(cfg.BehaviorRoot(), cfg.ResourceRoot(), nil),
		registry,
		refs,
		ctrl,
		nil,
	)
	return &harness{svc: svc, cfg: &cfg, lifecycle: lc, console: console, refs: refs}
}

const (
	dataUUID     = "11111111-2222-3333-4444-555555555555"
	resourceUUID = "66666666-7777-8888-9999-aaaaaaaaaaaa"
)

func manifestJSON(moduleType, headerUUID string, version [3]int) string {
	return fmt.Sprintf(`{
  "format_version": 2,
  "header": {
    "name": "Test Pack",
    "description": "test",
    "uuid": %q,
    "version": [%d, %d, %d]
  },
  "modules": [
    {"type": %q, "uuid": "0f9a3a63-54ba-4964-9b4c-4f36e1f53d05", "version": [%d, %d, %d]}
  ]
}`, headerUUID, version[0], version[1], version[2], moduleType, version[0], version[1], version[2])
}

// buildAddon writes a well-formed .mcaddon into the upload dir.
func (h *harness) buildAddon(t *testing.T, name string, version [3]int, extra map[string]string) string {
	t.Helper()
	files := map[string]string{
		"bp/manifest.json": manifestJSON("data", dataUUID, version),
		"rp/manifest.json": manifestJSON("resources", resourceUUID, version),
	}
	for p, body := range extra {
		files[p] = body
	}
	return buildArchive(t, filepath.Join(h.cfg.UploadDir, name), files)
}

func buildArchive(t *testing.T, path string, files map[string]string) string {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

// snapshotTree maps every file under root (relative path) to its bytes.
func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func entityJSON(id string) string {
	return fmt.Sprintf(`{"format_version": "1.16.0", "minecraft:entity": {"description": {"identifier": %q}}}`, id)
}
