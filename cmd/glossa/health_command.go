package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"glossa/internal/server"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show daemon health and aggregate project counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload server.HealthResponse
			if err := ctx.getJSON("/api/health", &payload); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, payload)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:     %s\n", payload.Status)
			fmt.Fprintf(out, "Projects:   %d total\n", payload.Total)
			fmt.Fprintf(out, "  pending:    %d\n", payload.Pending)
			fmt.Fprintf(out, "  processing: %d\n", payload.Processing)
			fmt.Fprintf(out, "  completed:  %d\n", payload.Completed)
			fmt.Fprintf(out, "  failed:     %d\n", payload.Failed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the health summary as JSON")
	return cmd
}
