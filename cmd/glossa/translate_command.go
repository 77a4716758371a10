package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"glossa/internal/server"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <project-id>",
		Short: "Start a translation run for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := strings.TrimSpace(args[0])
			var payload server.TranslateResponse
			if err := ctx.postJSON("/api/translate/"+projectID, &payload); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Translation started for project %s\n", payload.ProjectID)
			fmt.Fprintf(out, "Poll progress with `glossa status %s`.\n", payload.ProjectID)
			return nil
		},
	}
}
