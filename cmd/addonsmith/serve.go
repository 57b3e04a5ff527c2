// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/craftops/addonsmith/internal/logging"
	"github.com/craftops/addonsmith/internal/observability"
	"github.com/craftops/addonsmith/internal/web"
	"github.com/craftops/addonsmith/internal/worker"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the upload API and web page",
		Long: `Start the HTTP server that accepts .mcaddon uploads, runs install
and removal jobs one at a time, and exposes metrics and health probes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	addCommonFlags(cmd)
	f := cmd.Flags()
	f.String("listen-addr", ":8000", "API listen address")
	f.String("metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logging.SetDefault("addonsmith", version, cfg.LogFormat, slog.LevelInfo)
	logger := slog.Default()

	svc, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	runner := worker.NewRunner(logging.Component(logger, "worker"))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var obsServer *observability.Server
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool { return true })
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return err
		}
		metrics = obsServer.Metrics()
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
	}

	apiServer := web.NewServer(cfg, svc, runner, metrics, logging.Component(logger, "web"))
	if err := apiServer.Start(); err != nil {
		if obsServer != nil {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			if stopErr := obsServer.Stop(stopCtx); stopErr != nil {
				logger.Warn("failed to stop observability server during cleanup", "error", stopErr)
			}
		}
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("AddonSmith started on " + apiServer.Addr())
	logger.Info("addonsmith ready",
		"listen_addr", apiServer.Addr(),
		"data_dir", cfg.DataDir,
		"container", cfg.Container.Name,
	)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping web server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels the context when a background server
// fails, so a dead listener takes the process down instead of lingering.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
