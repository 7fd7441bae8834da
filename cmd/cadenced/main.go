// Command cadenced is the Cadence reminder daemon.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"cadence/internal/config"
	"cadence/internal/daemon"
	"cadence/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	deps, err := buildDeps(cfg, logger)
	if err != nil {
		logger.Error("build dependencies", logging.Error(err))
		return
	}

	d, err := daemon.New(cfg, deps, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("cadenced shutting down")
}
