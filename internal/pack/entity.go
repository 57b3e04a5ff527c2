// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package pack

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entity descriptor layout. Behavior packs declare server-side entities
// under entities/, resource packs declare client-visual entities under
// entity/. Both carry description.identifier; the server-authoritative
// schema wins when a file somehow declares both.
type entityDescription struct {
	Identifier string `json:"identifier"`
}

type entityBody struct {
	Description entityDescription `json:"description"`
}

type entityFile struct {
	Server *entityBody `json:"minecraft:entity"`
	Client *entityBody `json:"minecraft:client_entity"`
}

// EntityIdentifiers returns the deduplicated, sorted set of entity
// identifiers declared by a named pack. Enumeration is best-effort:
// files that fail to parse or lack an identifier are skipped. A pack
// with no entity descriptors yields an empty set, not an error.
func (r *Registry) EntityIdentifiers(name string) []string {
	seen := map[string]struct{}{}

	r.collectIdentifiers(filepath.Join(r.BehaviorDir(name), "entities"), seen)
	r.collectIdentifiers(filepath.Join(r.ResourceDir(name), "entity"), seen)

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) collectIdentifiers(dir string, seen map[string]struct{}) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Absent entity directories are the common case.
		return
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		id, ok := extractIdentifier(path)
		if !ok {
			r.log.Debug("skipping entity descriptor", "path", path)
			continue
		}
		seen[id] = struct{}{}
	}
}

// extractIdentifier reads one descriptor file, trying the server schema
// first and falling back to the client-visual schema.
func extractIdentifier(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var ef entityFile
	if err := json.Unmarshal(data, &ef); err != nil {
		return "", false
	}

	if ef.Server != nil && ef.Server.Description.Identifier != "" {
		return ef.Server.Description.Identifier, true
	}
	if ef.Client != nil && ef.Client.Description.Identifier != "" {
		return ef.Client.Description.Identifier, true
	}
	return "", false
}
