package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"glossa/internal/project"
	"glossa/internal/server"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List translation projects for an owner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner := ctx.owner()
			if owner == "" {
				return fmt.Errorf("owner id is required (use --owner or GLOSSA_OWNER)")
			}
			var payload server.ProjectListResponse
			if err := ctx.getJSON("/api/projects?owner="+url.QueryEscape(owner), &payload); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, payload)
			}
			out := cmd.OutOrStdout()
			if len(payload.Projects) == 0 {
				fmt.Fprintln(out, "No projects found.")
				return nil
			}
			fmt.Fprintln(out, renderProjectTable(payload.Projects))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the project list as JSON")
	return cmd
}

func renderProjectTable(projects []*project.Project) string {
	headers := []string{"ID", "Title", "Status", "Updated"}
	rows := make([][]string, 0, len(projects))
	for _, proj := range projects {
		rows = append(rows, []string{
			proj.ID,
			proj.Title,
			string(proj.Status),
			formatTimestamp(proj.UpdatedAt),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}
