// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

// Package archive opens uploaded add-on archives and classifies the
// packs they contain.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extractor unpacks an archive file into a directory. Implementations
// exist so orchestration logic can be tested with fakes.
type Extractor interface {
	Extract(src, dest string) error
}

// ZipExtractor extracts zip-format archives. Bedrock .mcaddon files are
// plain zip containers.
type ZipExtractor struct{}

// Extract unpacks src into dest. Entries that would escape dest are
// rejected.
func (ZipExtractor) Extract(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractEntry(f, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, dest string) error {
	target := filepath.Join(dest, f.Name)
	// Zip-slip guard.
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry %q escapes extraction directory", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %q: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
