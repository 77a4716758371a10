package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"glossa/internal/config"
	"glossa/internal/logging"
	"glossa/internal/project"
)

// maxUploadBytes bounds multipart parsing for document uploads.
const maxUploadBytes = 64 << 20

// Triggerer starts a translation run for a project. Implemented by
// pipeline.Coordinator; tests substitute stubs.
type Triggerer interface {
	Trigger(ctx context.Context, projectID string) error
}

// Server is the HTTP control surface. Clients upload documents, trigger
// translation runs, poll status, and download finished artifacts.
type Server struct {
	bind      string
	uploadDir string
	store     project.Store
	pipeline  Triggerer
	logger    *slog.Logger

	listener net.Listener
	server   *http.Server
}

// New builds the control surface over the given store and pipeline trigger.
func New(cfg *config.Config, store project.Store, pipeline Triggerer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &Server{
		bind:      strings.TrimSpace(cfg.Paths.APIBind),
		uploadDir: cfg.Paths.UploadDir,
		store:     store,
		pipeline:  pipeline,
		logger:    logging.NewComponentLogger(logger, "api-server"),
	}
	srv.server = &http.Server{
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Router returns the route tree. Exposed so tests can drive handlers through
// httptest without binding a socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Post("/translate/{projectID}", s.handleTranslate)
		r.Get("/status/{projectID}", s.handleStatus)
		r.Get("/download/{projectID}", s.handleDownload)
		r.Get("/projects", s.handleProjects)
		r.Get("/health", s.handleHealth)
	})
	return r
}

// Start binds the listener and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down, draining in-flight requests briefly.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
