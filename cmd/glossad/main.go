package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"glossa/internal/config"
	"glossa/internal/daemon"
	"glossa/internal/logging"
	"glossa/internal/pipeline"
	"glossa/internal/project"
	"glossa/internal/server"
	"glossa/internal/stagerun"
	"glossa/internal/workspace"
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

	store, err := project.Open(cfg)
	if err != nil {
		logger.Error("open project store", logging.Error(err))
		return
	}

	ws := workspace.NewManager(cfg.Paths.WorkspaceDir, logger)
	runner := stagerun.NewRunner(cfg, cfg.Paths.WorkspaceDir, logger)
	coordinator := pipeline.NewCoordinator(store, ws, runner, logger)
	api := server.New(cfg, store, coordinator, logger)

	d, err := daemon.New(cfg, store, coordinator, api, logger)
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
	logger.Info("glossad shutting down")
}
