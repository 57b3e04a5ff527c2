// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

// Package config builds the process-wide configuration object.
// Configuration is constructed once at startup and passed by reference
// into component constructors; there are no ambient globals.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/craftops/addonsmith/internal/xdg"
)

// Restart policies for the install flow. Removal always awaits readiness.
const (
	RestartAsync = "async"
	RestartAwait = "await"
)

// ContainerConfig describes the game-server container and its readiness probe.
type ContainerConfig struct {
	// Name is the container name passed to the container runtime.
	Name string `koanf:"name"`
	// ReadyMarker is the literal log line fragment that signals startup.
	ReadyMarker string `koanf:"ready-marker"`
	// ReadyTimeout bounds AwaitReady polling.
	ReadyTimeout time.Duration `koanf:"ready-timeout"`
	// PollInterval is the delay between log polls.
	PollInterval time.Duration `koanf:"poll-interval"`
	// TailLines is how many recent log lines each poll inspects.
	TailLines int `koanf:"tail-lines"`
}

// ConsoleConfig describes the remote console command channel.
type ConsoleConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Config holds all operator-tunable settings.
type Config struct {
	// DataDir is the server data root containing behavior_packs,
	// resource_packs, worlds and server.properties.
	DataDir string `koanf:"data-dir"`
	// UploadDir receives uploaded archives before installation.
	UploadDir string `koanf:"upload-dir"`
	// ScratchDir is cleared and reused for archive extraction.
	ScratchDir string `koanf:"scratch-dir"`
	// WorldName selects the active world. Empty means the first
	// subdirectory of <data-dir>/worlds in sorted order.
	WorldName string `koanf:"world-name"`

	ListenAddr     string `koanf:"listen-addr"`
	MetricsAddr    string `koanf:"metrics-addr"`
	LogFormat      string `koanf:"log-format"`
	MaxUploadBytes int64  `koanf:"max-upload-bytes"`
	// RestartPolicy is "async" (fire-and-forget) or "await" (block for
	// the readiness marker) after an install.
	RestartPolicy string `koanf:"restart-policy"`

	Container ContainerConfig `koanf:"container"`
	Console   ConsoleConfig   `koanf:"console"`

	// BehaviorExclude and ResourceExclude are glob patterns for
	// built-in pack directory names the registry must never list.
	BehaviorExclude []string `koanf:"behavior-exclude"`
	ResourceExclude []string `koanf:"resource-exclude"`
}

// Default returns the configuration defaults. The data layout matches the
// conventional Bedrock dedicated-server container image.
func Default() Config {
	return Config{
		DataDir:        "/data",
		UploadDir:      xdg.UploadDir(),
		ScratchDir:     xdg.ScratchDir(),
		ListenAddr:     ":8000",
		MetricsAddr:    "127.0.0.1:9100",
		LogFormat:      "json",
		MaxUploadBytes: 50 << 20,
		RestartPolicy:  RestartAsync,
		Container: ContainerConfig{
			Name:         "minecraft",
			ReadyMarker:  "Server started.",
			ReadyTimeout: 30 * time.Second,
			PollInterval: time.Second,
			TailLines:    100,
		},
		Console: ConsoleConfig{
			Addr:    "127.0.0.1:25575",
			Timeout: 3 * time.Second,
		},
		BehaviorExclude: []string{"vanilla*", "chemistry*", "experimental*"},
		ResourceExclude: []string{"vanilla*", "chemistry*", "editor*"},
	}
}

// Load builds a Config from defaults, an optional YAML config file, and
// command-line flags, in that precedence order (flags win).
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, oops.With("path", path).Wrapf(err, "load config file")
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Wrapf(err, "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data-dir is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.RestartPolicy != RestartAsync && c.RestartPolicy != RestartAwait {
		return fmt.Errorf("restart-policy must be %q or %q, got %q", RestartAsync, RestartAwait, c.RestartPolicy)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max-upload-bytes must be positive")
	}
	if c.Container.Name == "" {
		return fmt.Errorf("container.name is required")
	}
	if c.Container.ReadyTimeout <= 0 || c.Container.PollInterval <= 0 {
		return fmt.Errorf("container.ready-timeout and container.poll-interval must be positive")
	}
	if c.Container.TailLines <= 0 {
		return fmt.Errorf("container.tail-lines must be positive")
	}
	return nil
}

// BehaviorRoot returns the behavior pack root directory.
func (c *Config) BehaviorRoot() string {
	return filepath.Join(c.DataDir, "behavior_packs")
}

// ResourceRoot returns the resource pack root directory.
func (c *Config) ResourceRoot() string {
	return filepath.Join(c.DataDir, "resource_packs")
}

// WorldsRoot returns the directory holding world save directories.
func (c *Config) WorldsRoot() string {
	return filepath.Join(c.DataDir, "worlds")
}

// PropertiesPath returns the server.properties path.
func (c *Config) PropertiesPath() string {
	return filepath.Join(c.DataDir, "server.properties")
}
