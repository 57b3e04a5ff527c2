// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package pack

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Registry enumerates installed custom packs by listing the immediate
// subdirectories of the behavior and resource roots. Built-in packs are
// excluded by per-root glob patterns: the reserved name sets differ
// between behavior packs and resource packs.
type Registry struct {
	behaviorRoot    string
	resourceRoot    string
	behaviorExclude []compiledPattern
	resourceExclude []compiledPattern
	log             *slog.Logger
}

// compiledPattern holds an exclusion pattern and its compiled glob.
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// NewRegistry creates a Registry. Exclusion entries are glob patterns
// (e.g. "vanilla*"); an invalid pattern is a configuration error.
func NewRegistry(behaviorRoot, resourceRoot string, behaviorExclude, resourceExclude []string, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	be, err := compilePatterns(behaviorExclude)
	if err != nil {
		return nil, err
	}
	re, err := compilePatterns(resourceExclude)
	if err != nil {
		return nil, err
	}
	return &Registry{
		behaviorRoot:    behaviorRoot,
		resourceRoot:    resourceRoot,
		behaviorExclude: be,
		resourceExclude: re,
		log:             logger,
	}, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, oops.With("pattern", p).Wrapf(err, "compile exclusion pattern")
		}
		out = append(out, compiledPattern{pattern: p, glob: g})
	}
	return out, nil
}

// List returns the names of installed custom packs, merged across both
// roots, deduplicated, and sorted lexicographically. A pack present in
// only one root is still listed once. A missing root contributes nothing.
func (r *Registry) List() ([]string, error) {
	seen := map[string]struct{}{}

	if err := r.scanRoot(r.behaviorRoot, r.behaviorExclude, seen); err != nil {
		return nil, err
	}
	if err := r.scanRoot(r.resourceRoot, r.resourceExclude, seen); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Registry) scanRoot(root string, exclude []compiledPattern, seen map[string]struct{}) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return oops.With("root", root).Wrapf(err, "scan pack root")
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if matchesAny(e.Name(), exclude) {
			continue
		}
		seen[e.Name()] = struct{}{}
	}
	return nil
}

func matchesAny(name string, patterns []compiledPattern) bool {
	for _, p := range patterns {
		if p.glob.Match(name) {
			return true
		}
	}
	return false
}

// BehaviorDir returns the behavior directory for a named pack.
func (r *Registry) BehaviorDir(name string) string {
	return filepath.Join(r.behaviorRoot, name)
}

// ResourceDir returns the resource directory for a named pack.
func (r *Registry) ResourceDir(name string) string {
	return filepath.Join(r.resourceRoot, name)
}

// Installed reports whether the named pack has a directory under either root.
func (r *Registry) Installed(name string) bool {
	if _, err := os.Stat(r.BehaviorDir(name)); err == nil {
		return true
	}
	if _, err := os.Stat(r.ResourceDir(name)); err == nil {
		return true
	}
	return false
}
