package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"glossa/internal/daemon"
	"glossa/internal/logging"
	"glossa/internal/pipeline"
	"glossa/internal/project"
	"glossa/internal/server"
	"glossa/internal/stagerun"
	"glossa/internal/workspace"
)

// newServeCommand runs the daemon in the foreground, equivalent to glossad.
func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the glossa daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := project.Open(cfg)
			if err != nil {
				return fmt.Errorf("open project store: %w", err)
			}

			ws := workspace.NewManager(cfg.Paths.WorkspaceDir, logger)
			runner := stagerun.NewRunner(cfg, cfg.Paths.WorkspaceDir, logger)
			coordinator := pipeline.NewCoordinator(store, ws, runner, logger)
			api := server.New(cfg, store, coordinator, logger)

			d, err := daemon.New(cfg, store, coordinator, api, logger)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			signalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := d.Start(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "glossad listening on %s (ctrl-c to stop)\n", d.Status(signalCtx).APIAddr)
			<-signalCtx.Done()
			return nil
		},
	}
}
