// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/craftops/addonsmith/internal/logging"
)

// packListing is one row of the list output.
type packListing struct {
	Name     string   `json:"name" yaml:"name"`
	Entities []string `json:"entities,omitempty" yaml:"entities,omitempty"`
	Summon   []string `json:"summon,omitempty" yaml:"summon,omitempty"`
}

// NewListCmd creates the list subcommand.
func NewListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed add-ons",
		Long: `List installed add-ons with the entity identifiers each one
declares and ready-to-paste summon commands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, format)
		},
	}

	addCommonFlags(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "output format (text, json, or yaml)")

	return cmd
}

func runList(cmd *cobra.Command, format string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logging.SetDefault("addonsmith", version, cfg.LogFormat, slog.LevelWarn)

	svc, err := buildService(cfg, slog.Default())
	if err != nil {
		return err
	}

	registry := svc.Registry()
	names, err := registry.List()
	if err != nil {
		return err
	}

	listings := make([]packListing, 0, len(names))
	for _, name := range names {
		entities := registry.EntityIdentifiers(name)
		l := packListing{Name: name, Entities: entities}
		for _, id := range entities {
			l.Summon = append(l.Summon, "/summon "+id)
		}
		listings = append(listings, l)
	}

	switch format {
	case "json":
		out, err := json.MarshalIndent(listings, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
	case "yaml":
		out, err := yaml.Marshal(listings)
		if err != nil {
			return err
		}
		cmd.Print(string(out))
	case "text":
		if len(listings) == 0 {
			cmd.Println("no add-ons installed")
			return nil
		}
		for _, l := range listings {
			cmd.Println(l.Name)
			for _, hint := range l.Summon {
				cmd.Println("  " + hint)
			}
		}
	default:
		return fmt.Errorf("unknown format %q: must be text, json, or yaml", format)
	}
	return nil
}
