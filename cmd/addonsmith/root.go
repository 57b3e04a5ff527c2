// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the AddonSmith CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addonsmith",
		Short: "AddonSmith - Minecraft Bedrock add-on manager",
		Long: `AddonSmith installs and removes Minecraft Bedrock add-ons on a
dedicated server: it unpacks .mcaddon archives, activates the packs in
the world, and restarts the server container.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInstallCmd())
	cmd.AddCommand(NewRemoveCmd())
	cmd.AddCommand(NewListCmd())

	return cmd
}
