// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

// Package pack implements Bedrock add-on pack handling: manifest parsing,
// installation, the installed-pack registry, and entity enumeration.
package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// ManifestFileName is the descriptor file every pack carries at its root.
const ManifestFileName = "manifest.json"

// Type classifies a pack by its first declared module.
type Type string

// Module types declared by pack manifests.
const (
	// TypeData marks a behavior (server-logic) pack.
	TypeData Type = "data"
	// TypeResources marks a resource (client-visual) pack.
	TypeResources Type = "resources"
)

// Version is the ordered major/minor/patch triple from a manifest.
// It marshals as a 3-element JSON array, matching the wire format of
// manifest.json and the world pack-reference files.
type Version [3]int

// String renders the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

// Semver converts the triple to a semver value for ordering.
func (v Version) Semver() *semver.Version {
	return semver.New(uint64(v[0]), uint64(v[1]), uint64(v[2]), "", "")
}

// Compare returns -1, 0, or 1 ordering v against o.
func (v Version) Compare(o Version) int {
	return v.Semver().Compare(o.Semver())
}

// Header is the identity block of a manifest.
type Header struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	UUID        string  `json:"uuid"`
	Version     Version `json:"version"`
}

// Module is one sub-module declaration inside a manifest.
type Module struct {
	Type    Type    `json:"type"`
	UUID    string  `json:"uuid,omitempty"`
	Version Version `json:"version,omitempty"`
}

// Manifest represents a pack's manifest.json.
type Manifest struct {
	FormatVersion int      `json:"format_version,omitempty"`
	Header        Header   `json:"header"`
	Modules       []Module `json:"modules"`
}

// ModuleType returns the type of the first declared module, which decides
// whether the pack installs under the behavior or resource root.
func (m *Manifest) ModuleType() Type {
	if len(m.Modules) == 0 {
		return ""
	}
	return m.Modules[0].Type
}

// ParseManifest parses and validates manifest.json content.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("manifest data is empty")
	}

	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest constraints beyond the schema.
func (m *Manifest) Validate() error {
	if _, err := uuid.Parse(m.Header.UUID); err != nil {
		return fmt.Errorf("header.uuid %q is not a valid UUID: %w", m.Header.UUID, err)
	}
	if len(m.Modules) == 0 {
		return fmt.Errorf("manifest declares no modules")
	}
	return nil
}

// ReadManifest loads and parses the manifest.json inside dir.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.With("path", path).Wrapf(err, "read manifest")
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, oops.With("path", path).Wrapf(err, "parse manifest")
	}
	return m, nil
}

// unsafeNameChars matches everything not allowed in a pack directory name.
var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._ -]`)

// SanitizeName derives a directory-safe pack name from an archive base
// name. Unsafe characters are replaced, surrounding whitespace, dots and
// underscores are trimmed. Returns an error when nothing usable remains.
func SanitizeName(name string) (string, error) {
	s := unsafeNameChars.ReplaceAllString(name, "_")
	s = strings.Trim(s, " ._")
	if s == "" {
		return "", fmt.Errorf("archive name %q yields no usable pack name", name)
	}
	return s, nil
}
