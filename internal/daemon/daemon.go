package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"glossa/internal/config"
	"glossa/internal/deps"
	"glossa/internal/logging"
	"glossa/internal/pipeline"
	"glossa/internal/project"
	"glossa/internal/server"
)

// reclaimDiagnostic is recorded on projects found mid-run after a restart.
const reclaimDiagnostic = "translation interrupted by daemon restart"

// Daemon ties the store, pipeline coordinator, and HTTP control surface into
// a single lifecycle and enforces single-instance execution via a lock file.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  project.Store
	coord  *pipeline.Coordinator
	api    *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	LockFilePath string
	APIAddr      string
	Projects     project.HealthSummary
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store project.Store, coord *pipeline.Coordinator, api *server.Server, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || coord == nil || api == nil {
		return nil, errors.New("daemon requires config, store, coordinator, and api server")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := filepath.Join(cfg.Paths.DataDir, "glossad.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		coord:    coord,
		api:      api,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, recovers projects orphaned mid-run by a
// previous instance, and brings up the control surface.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another glossa daemon instance is already running")
	}

	// Missing scripts are reported, not fatal: operators often install them
	// after first start, and every run re-resolves the script paths.
	for _, status := range deps.Check(d.cfg) {
		if !status.Available {
			d.logger.Warn("pipeline dependency unavailable",
				logging.String("name", status.Name),
				logging.String("detail", status.Detail))
		}
	}

	reclaimed, err := d.store.ReclaimProcessing(ctx, reclaimDiagnostic)
	if err != nil {
		_ = d.lock.Unlock()
		return fmt.Errorf("reclaim orphaned projects: %w", err)
	}
	if reclaimed > 0 {
		d.logger.Warn("recovered projects orphaned mid-run", logging.Int64("count", reclaimed))
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("glossa daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api", d.api.Addr()))
	return nil
}

// Stop shuts down the control surface, waits for any in-flight run to finish,
// and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.Stop()
	d.coord.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("glossa daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	summary, err := d.store.Health(ctx)
	if err != nil {
		d.logger.Warn("health query failed", logging.Error(err))
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LockFilePath: d.lockPath,
		APIAddr:      d.api.Addr(),
		Projects:     summary,
		Dependencies: deps.Check(d.cfg),
	}
}
