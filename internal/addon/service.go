// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AddonSmith Contributors

package addon

import (
	"log/slog"

	"github.com/craftops/addonsmith/internal/archive"
	"github.com/craftops/addonsmith/internal/config"
	"github.com/craftops/addonsmith/internal/pack"
	"github.com/craftops/addonsmith/internal/server"
	"github.com/craftops/addonsmith/internal/world"
)

// Service owns both orchestrations. All collaborators are injected so
// the pipelines can run against fakes in tests.
type Service struct {
	cfg        *config.Config
	inspector  *archive.Inspector
	installer  *pack.Installer
	registry   *pack.Registry
	refs       *world.References
	controller *server.Controller
	log        *slog.Logger
}

// NewService wires a Service from its collaborators.
func NewService(
	cfg *config.Config,
	inspector *archive.Inspector,
	installer *pack.Installer,
	registry *pack.Registry,
	refs *world.References,
	controller *server.Controller,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:        cfg,
		inspector:  inspector,
		installer:  installer,
		registry:   registry,
		refs:       refs,
		controller: controller,
		log:        logger,
	}
}

// Registry exposes the pack registry for read-only listing surfaces.
func (s *Service) Registry() *pack.Registry {
	return s.registry
}
