package main

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"glossa/internal/server"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document and create a translation project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner := ctx.owner()
			if owner == "" {
				return fmt.Errorf("owner id is required (use --owner or GLOSSA_OWNER)")
			}
			source := strings.TrimSpace(args[0])
			payload, err := uploadDocument(ctx, source, title, owner)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created project %s (%s)\n", payload.ProjectID, payload.Title)
			fmt.Fprintf(out, "Run `glossa translate %s` to start the translation.\n", payload.ProjectID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Project title (defaults to the file name)")
	return cmd
}

func uploadDocument(ctx *commandContext, source, title, owner string) (*server.UploadResponse, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("ownerId", owner); err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	if title = strings.TrimSpace(title); title != "" {
		if err := writer.WriteField("title", title); err != nil {
			return nil, fmt.Errorf("build upload request: %w", err)
		}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(source))
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}

	url, err := ctx.apiURL("/api/upload")
	if err != nil {
		return nil, err
	}
	resp, err := ctx.client.Post(url, writer.FormDataContentType(), body)
	if err != nil {
		return nil, wrapDialError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}
	var payload server.UploadResponse
	if err := decodeResponse(resp, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
