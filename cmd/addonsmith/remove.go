// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/craftops/addonsmith/internal/addon"
	"github.com/craftops/addonsmith/internal/logging"
)

// NewRemoveCmd creates the remove subcommand.
func NewRemoveCmd() *cobra.Command {
	var removeAll bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove [pack...]",
		Short: "Remove installed add-ons",
		Long: `Remove installed add-ons by name, or everything with --all.
Deletes the pack directories, clears the world's pack references, and
restarts the server. Requires --yes; removal cannot be undone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("removal deletes pack files permanently; re-run with --yes to confirm")
			}
			if !removeAll && len(args) == 0 {
				return fmt.Errorf("name at least one pack or pass --all")
			}
			return runRemove(cmd, args, removeAll)
		},
	}

	addCommonFlags(cmd)
	cmd.Flags().BoolVar(&removeAll, "all", false, "remove every installed add-on")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the removal")

	return cmd
}

func runRemove(cmd *cobra.Command, packs []string, removeAll bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logging.SetDefault("addonsmith", version, cfg.LogFormat, slog.LevelInfo)

	svc, err := buildService(cfg, slog.Default())
	if err != nil {
		return err
	}

	report, err := svc.Remove(cmd.Context(), addon.RemoveRequest{Packs: packs, All: removeAll})
	if report != nil {
		for _, w := range report.Warnings {
			cmd.Println("warning: " + w)
		}
	}
	if err != nil {
		return err
	}

	cmd.Println(report.Message)
	return nil
}
