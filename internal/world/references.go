// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

// Package world rewrites the active world's pack-reference files and the
// server properties flag add-ons depend on.
package world

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/oops"

	"github.com/craftops/addonsmith/internal/pack"
)

// Reference file names under the world save directory.
const (
	BehaviorRefsFile = "world_behavior_packs.json"
	ResourceRefsFile = "world_resource_packs.json"
)

// PackRef is one world pack-reference record.
type PackRef struct {
	PackID  string       `json:"pack_id"`
	Version pack.Version `json:"version"`
}

// References writes the world's two pack-reference files.
//
// Activate replaces each file with a single-element array: only the most
// recently installed pack per type stays declared to the world. Earlier
// installs remain on disk but the world no longer loads them. This
// replace-not-merge behavior is deliberate and load-bearing; do not turn
// it into an append without revisiting which packs a world activates.
type References struct {
	worldsRoot string
	worldName  string
	log        *slog.Logger
}

// NewReferences creates a writer for the given worlds root. An empty
// worldName selects the first world directory in sorted order.
func NewReferences(worldsRoot, worldName string, logger *slog.Logger) *References {
	if logger == nil {
		logger = slog.Default()
	}
	return &References{worldsRoot: worldsRoot, worldName: worldName, log: logger}
}

// Dir resolves the active world's save directory, creating it when a
// world name is configured explicitly.
func (r *References) Dir() (string, error) {
	if r.worldName != "" {
		dir := filepath.Join(r.worldsRoot, r.worldName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", oops.With("world", r.worldName).Wrapf(err, "create world directory")
		}
		return dir, nil
	}

	entries, err := os.ReadDir(r.worldsRoot)
	if err != nil {
		return "", oops.With("worlds_root", r.worldsRoot).Wrapf(err, "list worlds")
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no world directories under %s", r.worldsRoot)
	}
	sort.Strings(names)
	return filepath.Join(r.worldsRoot, names[0]), nil
}

// Activate declares exactly the given behavior and resource packs to the
// world, replacing any previous references entirely.
func (r *References) Activate(behavior, resource PackRef) error {
	dir, err := r.Dir()
	if err != nil {
		return err
	}
	if err := writeRefs(filepath.Join(dir, BehaviorRefsFile), []PackRef{behavior}); err != nil {
		return err
	}
	if err := writeRefs(filepath.Join(dir, ResourceRefsFile), []PackRef{resource}); err != nil {
		return err
	}
	r.log.Info("world references written",
		"world", dir,
		"behavior_pack", behavior.PackID,
		"resource_pack", resource.PackID,
	)
	return nil
}

// Clear empties both reference files. Used after removing packs.
func (r *References) Clear() error {
	dir, err := r.Dir()
	if err != nil {
		return err
	}
	if err := writeRefs(filepath.Join(dir, BehaviorRefsFile), []PackRef{}); err != nil {
		return err
	}
	if err := writeRefs(filepath.Join(dir, ResourceRefsFile), []PackRef{}); err != nil {
		return err
	}
	r.log.Info("world references cleared", "world", dir)
	return nil
}

// Read returns the current contents of one reference file. A missing
// file reads as empty.
func (r *References) Read(fileName string) ([]PackRef, error) {
	dir, err := r.Dir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, oops.With("path", path).Wrapf(err, "read references")
	}
	var refs []PackRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, oops.With("path", path).Wrapf(err, "parse references")
	}
	return refs, nil
}

func writeRefs(path string, refs []PackRef) error {
	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return oops.With("path", path).Wrapf(err, "encode references")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return oops.With("path", path).Wrapf(err, "write references")
	}
	return nil
}
