package main

import (
	"fmt"
	"log/slog"

	"cadence/internal/cache"
	"cadence/internal/config"
	"cadence/internal/daemon"
	"cadence/internal/docstore"
	"cadence/internal/identity"
	"cadence/internal/notify"
	"cadence/internal/planstore"
	"cadence/internal/records"
	"cadence/internal/routine"
)

// buildDeps wires the daemon's collaborators from configuration.
func buildDeps(cfg *config.Config, logger *slog.Logger) (daemon.Deps, error) {
	local, err := cache.Open(cfg.DatabasePath())
	if err != nil {
		return daemon.Deps{}, fmt.Errorf("open cache: %w", err)
	}
	library, err := routine.LoadLibrary(cfg.RoutinesPath())
	if err != nil {
		_ = local.Close()
		return daemon.Deps{}, fmt.Errorf("load routine library: %w", err)
	}

	remote := docstore.NewConfiguredStore(cfg)
	return daemon.Deps{
		Cache:      local,
		Plans:      planstore.New(local, remote, logger),
		Recorder:   records.New(local, remote, logger),
		Library:    library,
		Capability: notify.NewCapability(cfg, logger),
		Auth:       identity.NewStatic(cfg.Identity.UserID),
	}, nil
}
