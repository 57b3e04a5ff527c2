// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "install")
	assert.Contains(t, names, "remove")
	assert.Contains(t, names, "list")
}

func TestRootCmd_Help(t *testing.T) {
	out, err := executeCommand(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "addonsmith")
	assert.Contains(t, out, "serve")
}

func TestRemoveCmd_RequiresConfirmation(t *testing.T) {
	_, err := executeCommand(t, "remove", "somepack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestRemoveCmd_RequiresTargets(t *testing.T) {
	_, err := executeCommand(t, "remove", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--all")
}

func TestInstallCmd_RequiresArchiveArg(t *testing.T) {
	_, err := executeCommand(t, "install")
	assert.Error(t, err)
}

func TestListCmd_EmptyDataDir(t *testing.T) {
	dataDir := t.TempDir()

	out, err := executeCommand(t, "list", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "no add-ons installed")
}

func TestListCmd_ShowsInstalledPacks(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "behavior_packs", "ghosts"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "behavior_packs", "vanilla_1.21"), 0o755))

	out, err := executeCommand(t, "list", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "ghosts")
	assert.NotContains(t, out, "vanilla_1.21", "reserved packs are hidden")
}

func TestListCmd_RejectsUnknownFormat(t *testing.T) {
	_, err := executeCommand(t, "list", "--data-dir", t.TempDir(), "--format", "xml")
	assert.Error(t, err)
}
