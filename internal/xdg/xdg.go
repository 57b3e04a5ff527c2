// Package xdg provides XDG Base Directory paths for AddonSmith.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "addonsmith"

// ConfigDir returns the XDG config directory for addonsmith.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// StateDir returns the XDG state directory for addonsmith.
// Checks XDG_STATE_HOME first, falls back to ~/.local/state.
func StateDir() string {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".local", "state")
	}
	return filepath.Join(base, appName)
}

// UploadDir returns the default directory for uploaded archives awaiting
// installation.
func UploadDir() string {
	return filepath.Join(StateDir(), "uploads")
}

// ScratchDir returns the default scratch directory used for archive
// extraction. Contents are transient and cleared per extraction.
func ScratchDir() string {
	return filepath.Join(StateDir(), "scratch")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "addonsmith.yaml")
}

// EnsureDir creates a directory and all parent directories if they don't exist.
// Directories are created with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
