// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, RestartAsync, cfg.RestartPolicy)
	assert.Equal(t, 30*time.Second, cfg.Container.ReadyTimeout)
}

func TestLoad_NoFileNoFlags(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default().Container.Name, cfg.Container.Name)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addonsmith.yaml")
	content := `
data-dir: /srv/bedrock
world-name: Overworld
restart-policy: await
container:
  name: bedrock
  ready-marker: "Server started."
console:
  addr: "127.0.0.1:19133"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/srv/bedrock", cfg.DataDir)
	assert.Equal(t, "Overworld", cfg.WorldName)
	assert.Equal(t, RestartAwait, cfg.RestartPolicy)
	assert.Equal(t, "bedrock", cfg.Container.Name)
	assert.Equal(t, "127.0.0.1:19133", cfg.Console.Addr)
	// Untouched keys keep their defaults.
	assert.Equal(t, int64(50<<20), cfg.MaxUploadBytes)
	assert.Equal(t, time.Second, cfg.Container.PollInterval)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data-dir is required"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log-format"},
		{"bad restart policy", func(c *Config) { c.RestartPolicy = "maybe" }, "restart-policy"},
		{"zero upload cap", func(c *Config) { c.MaxUploadBytes = 0 }, "max-upload-bytes"},
		{"empty container name", func(c *Config) { c.Container.Name = "" }, "container.name"},
		{"zero poll interval", func(c *Config) { c.Container.PollInterval = 0 }, "poll-interval"},
		{"zero tail lines", func(c *Config) { c.Container.TailLines = 0 }, "tail-lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPathHelpers(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/srv/bedrock"
	assert.Equal(t, "/srv/bedrock/behavior_packs", cfg.BehaviorRoot())
	assert.Equal(t, "/srv/bedrock/resource_packs", cfg.ResourceRoot())
	assert.Equal(t, "/srv/bedrock/worlds", cfg.WorldsRoot())
	assert.Equal(t, "/srv/bedrock/server.properties", cfg.PropertiesPath())
}
