package main

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "download <project-id>",
		Short: "Download the translated document for a completed project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := strings.TrimSpace(args[0])
			url, err := ctx.apiURL("/api/download/" + projectID)
			if err != nil {
				return err
			}
			resp, err := ctx.client.Get(url)
			if err != nil {
				return wrapDialError(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return apiError(resp)
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = attachmentName(resp, projectID)
			}
			out, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			written, err := io.Copy(out, resp.Body)
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				_ = os.Remove(target)
				return fmt.Errorf("write output file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", target, written)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination path (defaults to the served filename)")
	return cmd
}

// attachmentName extracts the server-suggested filename, falling back to a
// name derived from the project id.
func attachmentName(resp *http.Response, projectID string) string {
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if name := strings.TrimSpace(params["filename"]); name != "" {
			return name
		}
	}
	return projectID + "_translated.pdf"
}
