// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package pack

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema(t *testing.T) {
	data, err := GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, GetSchemaID(), schema["$id"])
	assert.Equal(t, "Bedrock Pack Manifest", schema["title"])
}

func TestValidateSchema(t *testing.T) {
	ResetSchemaCache()

	require.NoError(t, ValidateSchema([]byte(validManifest)))

	// header.uuid missing
	err := ValidateSchema([]byte(`{"header": {"version": [1,0,0]}, "modules": []}`))
	assert.Error(t, err)

	// version must be a 3-int array
	err = ValidateSchema([]byte(`{"header": {"uuid": "11111111-2222-3333-4444-555555555555", "version": "1.0.0"}, "modules": [{"type": "data"}]}`))
	assert.Error(t, err)

	assert.Error(t, ValidateSchema(nil))
	assert.Error(t, ValidateSchema([]byte("{")))
}

func TestFormatSchemaError(t *testing.T) {
	assert.Equal(t, "", FormatSchemaError(nil))

	err := ValidateSchema([]byte(`{"modules": []}`))
	require.Error(t, err)
	msg := FormatSchemaError(err)
	assert.NotContains(t, msg, "schema validation failed:")
	assert.NotEmpty(t, msg)
}
