// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package archive

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/craftops/addonsmith/internal/pack"
)

// ErrArchiveInvalid is returned when the uploaded archive cannot be
// opened or extracted.
var ErrArchiveInvalid = errors.New("archive cannot be read")

// ErrManifestIncomplete is returned when the archive does not contain
// both a data-type and a resources-type pack.
var ErrManifestIncomplete = errors.New("archive is missing a data or resources pack")

// Classification maps the archive's contents to the two source
// directories an install needs.
type Classification struct {
	// Data is the directory of the behavior (server-logic) pack.
	Data string
	// Resources is the directory of the resource (client-visual) pack.
	Resources string
}

// Inspector extracts an archive and classifies the packs inside it by
// the type of each manifest's first module.
type Inspector struct {
	extractor Extractor
	log       *slog.Logger
}

// NewInspector creates an Inspector. A nil extractor defaults to
// ZipExtractor.
func NewInspector(extractor Extractor, logger *slog.Logger) *Inspector {
	if extractor == nil {
		extractor = ZipExtractor{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{extractor: extractor, log: logger}
}

// Inspect extracts archivePath into scratchDir (cleared first) and
// locates one data-type and one resources-type pack. When multiple
// manifests declare the same type, the last one encountered wins.
func (i *Inspector) Inspect(archivePath, scratchDir string) (*Classification, error) {
	if err := os.RemoveAll(scratchDir); err != nil {
		return nil, oops.With("scratch", scratchDir).Wrapf(err, "clear scratch directory")
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, oops.With("scratch", scratchDir).Wrapf(err, "create scratch directory")
	}

	if err := i.extractor.Extract(archivePath, scratchDir); err != nil {
		return nil, oops.With("archive", archivePath).Wrapf(errors.Join(ErrArchiveInvalid, err), "extract archive")
	}

	byType := map[pack.Type]string{}
	walkErr := filepath.WalkDir(scratchDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != pack.ManifestFileName {
			return nil
		}

		m, err := pack.ReadManifest(filepath.Dir(path))
		if err != nil {
			i.log.Warn("skipping unparseable manifest", "path", path, "error", err)
			return nil
		}

		switch t := m.ModuleType(); t {
		case pack.TypeData, pack.TypeResources:
			if prev, ok := byType[t]; ok {
				i.log.Warn("duplicate pack type in archive, last wins",
					"type", string(t), "previous", prev, "chosen", filepath.Dir(path))
			}
			byType[t] = filepath.Dir(path)
		default:
			i.log.Warn("ignoring manifest with unknown module type", "path", path, "type", string(t))
		}
		return nil
	})
	if walkErr != nil {
		return nil, oops.With("scratch", scratchDir).Wrapf(walkErr, "scan extracted archive")
	}

	dataDir, haveData := byType[pack.TypeData]
	resourcesDir, haveResources := byType[pack.TypeResources]
	if !haveData || !haveResources {
		return nil, oops.
			With("archive", archivePath).
			With("have_data", haveData).
			With("have_resources", haveResources).
			Wrap(ErrManifestIncomplete)
	}

	return &Classification{Data: dataDir, Resources: resourcesDir}, nil
}
