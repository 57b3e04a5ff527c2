// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/craftops/addonsmith/internal/addon"
	"github.com/craftops/addonsmith/internal/archive"
	"github.com/craftops/addonsmith/internal/config"
	"github.com/craftops/addonsmith/internal/logging"
	"github.com/craftops/addonsmith/internal/pack"
	"github.com/craftops/addonsmith/internal/server"
	"github.com/craftops/addonsmith/internal/world"
)

// addCommonFlags registers the flags shared by every subcommand that
// loads the full configuration. Flag names match config keys so a flag
// always overrides the corresponding file setting.
func addCommonFlags(cmd *cobra.Command) {
	def := config.Default()
	f := cmd.Flags()
	f.String("data-dir", def.DataDir, "server data directory (behavior_packs, resource_packs, worlds)")
	f.String("world-name", def.WorldName, "world to activate packs in (default: first world found)")
	f.String("log-format", def.LogFormat, "log format (json or text)")
	f.String("restart-policy", def.RestartPolicy, "after install: async or await")
	f.String("container.name", def.Container.Name, "game server container name")
	f.String("console.addr", def.Console.Addr, "remote console address (empty = disabled)")
	f.String("console.password", def.Console.Password, "remote console password")
}

// loadConfig builds the configuration from defaults, the optional
// config file, and the command's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(configFile, cmd.Flags())
}

// buildService wires the install/removal service from configuration.
func buildService(cfg *config.Config, logger *slog.Logger) (*addon.Service, error) {
	registry, err := pack.NewRegistry(cfg.BehaviorRoot(), cfg.ResourceRoot(),
		cfg.BehaviorExclude, cfg.ResourceExclude, logging.Component(logger, "registry"))
	if err != nil {
		return nil, err
	}

	var console server.Console
	if cfg.Console.Addr != "" {
		console = server.NewRconConsole(cfg.Console.Addr, cfg.Console.Password, cfg.Console.Timeout)
	}
	lifecycle := server.NewDockerLifecycle(cfg.Container.Name, logging.Component(logger, "lifecycle"))
	controller := server.NewController(lifecycle, console,
		cfg.Container.ReadyMarker, cfg.Container.PollInterval, cfg.Container.TailLines,
		logging.Component(logger, "controller"))

	svc := addon.NewService(cfg,
		archive.NewInspector(nil, logging.Component(logger, "inspector")),
		pack.NewInstaller(cfg.BehaviorRoot(), cfg.ResourceRoot(), logging.Component(logger, "installer")),
		registry,
		world.NewReferences(cfg.WorldsRoot(), cfg.WorldName, logging.Component(logger, "world")),
		controller,
		logger,
	)
	return svc, nil
}
