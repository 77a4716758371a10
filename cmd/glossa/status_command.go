package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"glossa/internal/project"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status <project-id>",
		Short: "Show the current state of a translation project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := strings.TrimSpace(args[0])
			var proj project.Project
			if err := ctx.getJSON("/api/status/"+projectID, &proj); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, proj)
			}
			printProject(cmd, &proj)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw project record as JSON")
	return cmd
}

func printProject(cmd *cobra.Command, proj *project.Project) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project:  %s\n", proj.ID)
	fmt.Fprintf(out, "Title:    %s\n", proj.Title)
	fmt.Fprintf(out, "Owner:    %s\n", proj.OwnerID)
	fmt.Fprintf(out, "Status:   %s\n", proj.Status)
	fmt.Fprintf(out, "Created:  %s\n", proj.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Updated:  %s\n", proj.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	if proj.Status == project.StatusFailed && proj.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:    %s\n", proj.ErrorMessage)
	}
	if proj.Status == project.StatusCompleted {
		fmt.Fprintf(out, "Download: glossa download %s\n", proj.ID)
	}
}
