// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package pack

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

// Installer copies classified pack sources into the server's behavior and
// resource roots. Copies are additive and overwriting: files already
// present in the destination survive unless a source file shadows them.
type Installer struct {
	behaviorRoot string
	resourceRoot string
	log          *slog.Logger
}

// NewInstaller creates an Installer for the given pack roots.
func NewInstaller(behaviorRoot, resourceRoot string, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{
		behaviorRoot: behaviorRoot,
		resourceRoot: resourceRoot,
		log:          logger,
	}
}

// Install places the data (behavior) and resources sources under the pack
// name in their respective roots. A failed copy aborts the whole install.
func (in *Installer) Install(name, dataDir, resourcesDir string) error {
	behaviorDest := filepath.Join(in.behaviorRoot, name)
	if err := copyTree(dataDir, behaviorDest); err != nil {
		return oops.With("pack", name).With("dest", behaviorDest).Wrapf(err, "install behavior pack")
	}
	in.log.Info("behavior pack installed", "pack", name, "dest", behaviorDest)

	resourceDest := filepath.Join(in.resourceRoot, name)
	if err := copyTree(resourcesDir, resourceDest); err != nil {
		return oops.With("pack", name).With("dest", resourceDest).Wrapf(err, "install resource pack")
	}
	in.log.Info("resource pack installed", "pack", name, "dest", resourceDest)

	return nil
}

// BehaviorDir returns the destination directory for a named behavior pack.
func (in *Installer) BehaviorDir(name string) string {
	return filepath.Join(in.behaviorRoot, name)
}

// ResourceDir returns the destination directory for a named resource pack.
func (in *Installer) ResourceDir(name string) string {
	return filepath.Join(in.resourceRoot, name)
}

// copyTree recursively copies src into dest, creating directories as
// needed and truncating destination files that already exist. Files in
// dest with no counterpart in src are left alone.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
