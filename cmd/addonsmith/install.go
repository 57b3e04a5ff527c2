// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/craftops/addonsmith/internal/logging"
	"github.com/craftops/addonsmith/internal/xdg"
)

// NewInstallCmd creates the install subcommand.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <archive.mcaddon>",
		Short: "Install an add-on archive",
		Long: `Install a .mcaddon archive: unpack it, copy the behavior and
resource packs into the server data directory, activate them in the
world, and restart the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, args[0])
		},
	}

	addCommonFlags(cmd)
	return cmd
}

func runInstall(cmd *cobra.Command, archivePath string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logging.SetDefault("addonsmith", version, cfg.LogFormat, slog.LevelInfo)

	svc, err := buildService(cfg, slog.Default())
	if err != nil {
		return err
	}

	// The pipeline consumes its input file, so work on a staged copy and
	// leave the operator's archive alone.
	staged, err := stageArchive(cfg.UploadDir, archivePath)
	if err != nil {
		return err
	}

	report, err := svc.Install(cmd.Context(), staged)
	for _, w := range report.Warnings {
		cmd.Println("warning: " + w)
	}
	if err != nil {
		return err
	}

	cmd.Println(report.Message)
	for _, hint := range report.Summon {
		cmd.Println("  " + hint)
	}
	return nil
}

// stageArchive copies the archive into the upload directory under its
// original base name.
func stageArchive(uploadDir, src string) (string, error) {
	if err := xdg.EnsureDir(uploadDir); err != nil {
		return "", oops.With("dir", uploadDir).Wrapf(err, "create upload directory")
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer in.Close()

	dest := filepath.Join(uploadDir, filepath.Base(src))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("stage archive: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("stage archive: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("stage archive: %w", err)
	}
	return dest, nil
}
