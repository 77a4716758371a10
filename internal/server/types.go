package server

import "glossa/internal/project"

// UploadResponse acknowledges a stored document and its new project.
type UploadResponse struct {
	ProjectID string         `json:"projectId"`
	Title     string         `json:"title"`
	Status    project.Status `json:"status"`
}

// TranslateResponse acknowledges an accepted translation run.
type TranslateResponse struct {
	Success   bool           `json:"success"`
	ProjectID string         `json:"projectId"`
	Status    project.Status `json:"status"`
}

// ProjectListResponse wraps an owner's projects, most recent first.
type ProjectListResponse struct {
	Projects []*project.Project `json:"projects"`
}

// HealthResponse reports daemon liveness and aggregate project counts.
type HealthResponse struct {
	Status     string `json:"status"`
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	Processing int    `json:"processing"`
	Completed  int    `json:"completed"`
	Failed     int    `json:"failed"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
