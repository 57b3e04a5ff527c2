// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package pack

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

const serverEntity = `{
  "format_version": "1.16.0",
  "minecraft:entity": {
    "description": {"identifier": "smith:dragon"},
    "components": {}
  }
}`

const clientEntity = `{
  "format_version": "1.10.0",
  "minecraft:client_entity": {
    "description": {
      "identifier": "smith:dragon_visual",
      "textures": {"default": "textures/entity/dragon"}
    }
  }
}`

func TestEntityIdentifiers(t *testing.T) {
	root := t.TempDir()
	behaviorRoot := filepath.Join(root, "behavior_packs")
	resourceRoot := filepath.Join(root, "resource_packs")

	writeFile(t, filepath.Join(behaviorRoot, "dragons", "entities", "dragon.json"), serverEntity)
	writeFile(t, filepath.Join(resourceRoot, "dragons", "entity", "dragon.json"), clientEntity)
	// Duplicate declaration resolves to one identifier.
	writeFile(t, filepath.Join(resourceRoot, "dragons", "entity", "dragon_copy.json"), clientEntity)
	// Unparseable and identifier-less files are skipped silently.
	writeFile(t, filepath.Join(resourceRoot, "dragons", "entity", "broken.json"), "{not json")
	writeFile(t, filepath.Join(resourceRoot, "dragons", "entity", "empty.json"), `{"minecraft:client_entity": {"description": {}}}`)
	// Non-JSON files are ignored.
	writeFile(t, filepath.Join(resourceRoot, "dragons", "entity", "notes.txt"), "hi")

	r := newTestRegistry(t, behaviorRoot, resourceRoot)
	ids := r.EntityIdentifiers("dragons")

	assert.Equal(t, []string{"smith:dragon", "smith:dragon_visual"}, ids)
}

func TestEntityIdentifiers_NoEntityDirs(t *testing.T) {
	root := t.TempDir()
	behaviorRoot := filepath.Join(root, "behavior_packs")
	resourceRoot := filepath.Join(root, "resource_packs")
	mkdirs(t, behaviorRoot, "plain")

	r := newTestRegistry(t, behaviorRoot, resourceRoot)
	assert.Empty(t, r.EntityIdentifiers("plain"))
	assert.Empty(t, r.EntityIdentifiers("never-installed"))
}

func TestEntityIdentifiers_ServerSchemaWins(t *testing.T) {
	root := t.TempDir()
	behaviorRoot := filepath.Join(root, "behavior_packs")
	resourceRoot := filepath.Join(root, "resource_packs")

	both := `{
  "minecraft:entity": {"description": {"identifier": "smith:real"}},
  "minecraft:client_entity": {"description": {"identifier": "smith:shadow"}}
}`
	writeFile(t, filepath.Join(behaviorRoot, "dragons", "entities", "both.json"), both)

	r := newTestRegistry(t, behaviorRoot, resourceRoot)
	assert.Equal(t, []string{"smith:real"}, r.EntityIdentifiers("dragons"))
}
