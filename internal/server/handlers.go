package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"glossa/internal/faults"
	"glossa/internal/logging"
	"glossa/internal/project"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	ownerID := s.ownerFrom(r, r.FormValue("ownerId"))
	if ownerID == "" {
		s.writeError(w, http.StatusBadRequest, "ownerId is required")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		base := filepath.Base(header.Filename)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	sourceRef, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.logger.Error("upload save failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	proj, err := s.store.Create(r.Context(), ownerID, title, sourceRef)
	if err != nil {
		_ = os.Remove(sourceRef)
		s.logger.Error("project create failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}

	s.logger.Info("document uploaded",
		logging.String(logging.FieldProjectID, proj.ID),
		logging.String("title", proj.Title),
		logging.String("owner", ownerID))
	s.writeJSON(w, http.StatusCreated, UploadResponse{
		ProjectID: proj.ID,
		Title:     proj.Title,
		Status:    proj.Status,
	})
}

// saveUpload persists the multipart payload under a collision-free name so
// repeated uploads of the same filename never overwrite one another.
func (s *Server) saveUpload(file io.Reader, filename string) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", faults.Wrap(faults.ErrUpload, "api-server", "upload", "create upload dir", err)
	}
	base := sanitizeFilename(filename)
	if base == "" {
		base = "document.pdf"
	}
	name := uuid.NewString() + "_" + base
	target := filepath.Join(s.uploadDir, name)
	out, err := os.Create(target)
	if err != nil {
		return "", faults.Wrap(faults.ErrUpload, "api-server", "upload", "create upload file", err)
	}
	if _, err := io.Copy(out, file); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return "", faults.Wrap(faults.ErrUpload, "api-server", "upload", "write upload file", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return "", faults.Wrap(faults.ErrUpload, "api-server", "upload", "close upload file", err)
	}
	return target, nil
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if err := s.pipeline.Trigger(r.Context(), projectID); err != nil {
		switch {
		case errors.Is(err, faults.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "project not found")
		case errors.Is(err, faults.ErrBusy):
			s.writeError(w, http.StatusConflict, "another translation is in progress")
		case errors.Is(err, faults.ErrConflict):
			s.writeError(w, http.StatusConflict, faults.Message(err))
		default:
			s.logger.Error("trigger failed",
				logging.String(logging.FieldProjectID, projectID),
				logging.Error(err))
			s.writeError(w, http.StatusInternalServerError, "failed to start translation")
		}
		return
	}
	s.writeJSON(w, http.StatusOK, TranslateResponse{
		Success:   true,
		ProjectID: projectID,
		Status:    project.StatusProcessing,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	proj, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	proj, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if proj.Status != project.StatusCompleted || proj.ResultRef == "" {
		s.writeError(w, http.StatusNotFound, "translation not completed")
		return
	}
	artifact, err := os.Open(proj.ResultRef)
	if err != nil {
		s.logger.Error("result artifact unreadable",
			logging.String(logging.FieldProjectID, proj.ID),
			logging.Error(err))
		s.writeError(w, http.StatusNotFound, "translated document is no longer available")
		return
	}
	defer artifact.Close()

	info, err := artifact.Stat()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read translated document")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", downloadName(proj.Title)))
	http.ServeContent(w, r, downloadName(proj.Title), info.ModTime(), artifact)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	ownerID := s.ownerFrom(r, r.URL.Query().Get("owner"))
	if ownerID == "" {
		s.writeError(w, http.StatusBadRequest, "owner is required")
		return
	}
	projects, err := s.store.ListByOwner(r.Context(), ownerID)
	if err != nil {
		s.logger.Error("project list failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	s.writeJSON(w, http.StatusOK, ProjectListResponse{Projects: projects})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Health(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Total:      summary.Total,
		Pending:    summary.Pending,
		Processing: summary.Processing,
		Completed:  summary.Completed,
		Failed:     summary.Failed,
	})
}

// lookup resolves the path's project or writes the error response itself.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*project.Project, bool) {
	projectID := chi.URLParam(r, "projectID")
	proj, err := s.store.Get(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, faults.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "project not found")
		} else {
			s.logger.Error("project lookup failed",
				logging.String(logging.FieldProjectID, projectID),
				logging.Error(err))
			s.writeError(w, http.StatusInternalServerError, "failed to load project")
		}
		return nil, false
	}
	return proj, true
}

// ownerFrom prefers the explicit value and falls back to the X-Owner-ID
// header. Identity is taken at face value; there is no authentication layer.
func (s *Server) ownerFrom(r *http.Request, explicit string) string {
	if owner := strings.TrimSpace(explicit); owner != "" {
		return owner
	}
	return strings.TrimSpace(r.Header.Get("X-Owner-ID"))
}

func downloadName(title string) string {
	name := sanitizeFilename(title)
	if name == "" {
		name = "document"
	}
	return name + "_translated.pdf"
}

// sanitizeFilename keeps uploaded names shell-safe and path-traversal free.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "._")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
