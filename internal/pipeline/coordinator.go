package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"glossa/internal/faults"
	"glossa/internal/logging"
	"glossa/internal/project"
	"glossa/internal/stagerun"
	"glossa/internal/workspace"
)

const (
	// diagnosticLimit bounds the failure detail persisted to the store.
	diagnosticLimit = 500

	persistAttempts = 3
	persistBackoff  = 200 * time.Millisecond
)

// StageInvoker executes a single pipeline stage to completion.
type StageInvoker interface {
	Invoke(ctx context.Context, stg stagerun.Stage) error
}

// Coordinator drives translation runs. Exactly one run executes at a time;
// the run lock guards the shared workspace for the full duration of a run.
type Coordinator struct {
	store  project.Store
	ws     *workspace.Manager
	runner StageInvoker
	stages []stagerun.Stage
	logger *slog.Logger

	runLock sync.Mutex
	wg      sync.WaitGroup
}

// NewCoordinator wires a coordinator over the given store, workspace, and
// stage runner. The stage sequence is fixed.
func NewCoordinator(store project.Store, ws *workspace.Manager, runner StageInvoker, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		store:  store,
		ws:     ws,
		runner: runner,
		stages: stagerun.Sequence(),
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Trigger starts a run for the given project. It validates the project is in
// a triggerable state, claims the run lock, and marks the project processing
// before returning; the stage sequence itself executes on a background
// goroutine. Callers observe progress through the store.
func (c *Coordinator) Trigger(ctx context.Context, projectID string) error {
	proj, err := c.store.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if !proj.Status.Triggerable() {
		return faults.Wrap(faults.ErrConflict, "pipeline", "trigger",
			fmt.Sprintf("project %s is %s and cannot start a run", proj.ID, proj.Status), nil)
	}
	if !c.runLock.TryLock() {
		return faults.Wrap(faults.ErrBusy, "pipeline", "trigger",
			"another translation run is in progress", nil)
	}

	if _, err := c.store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{Status: project.StatusProcessing}); err != nil {
		c.runLock.Unlock()
		return err
	}

	c.logger.Info("run accepted",
		logging.String(logging.FieldProjectID, proj.ID),
		logging.Int("stages", len(c.stages)))

	c.wg.Add(1)
	go c.run(proj.ID, proj.SourceRef)
	return nil
}

// Wait blocks until any in-flight run has finished. Used during shutdown and
// by tests to observe run completion.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) run(projectID, sourceRef string) {
	defer c.wg.Done()
	defer c.runLock.Unlock()

	// The run outlives the triggering request, so it carries its own context.
	ctx := logging.WithProject(context.Background(), projectID)
	logger := logging.WithContext(ctx, c.logger)
	started := time.Now()

	if err := c.prepare(ctx, sourceRef); err != nil {
		logger.Error("workspace preparation failed", logging.Error(err))
		c.finish(ctx, projectID, project.StatusUpdate{
			Status:     project.StatusFailed,
			Diagnostic: faults.Truncate(faults.Message(err), diagnosticLimit),
		})
		return
	}

	for _, stg := range c.stages {
		if err := c.runner.Invoke(ctx, stg); err != nil {
			logger.Error("run failed",
				logging.String(logging.FieldStage, stg.Name),
				logging.Error(err))
			c.finish(ctx, projectID, project.StatusUpdate{
				Status:     project.StatusFailed,
				Diagnostic: diagnosticFor(stg, err),
			})
			return
		}
	}

	c.finish(ctx, projectID, project.StatusUpdate{
		Status:    project.StatusCompleted,
		ResultRef: c.ws.ResultPath(),
	})
	logger.Info("run completed",
		logging.Duration("elapsed", time.Since(started)),
		logging.String("result", c.ws.ResultPath()))
}

// prepare resets the shared workspace and copies the project source into it.
func (c *Coordinator) prepare(ctx context.Context, sourceRef string) error {
	if err := c.ws.Reset(ctx); err != nil {
		return err
	}
	return c.ws.Stage(ctx, sourceRef)
}

// finish records the terminal status for the run. A lost final transition
// would strand the project in processing, so persistence errors are retried
// a few times before giving up.
func (c *Coordinator) finish(ctx context.Context, projectID string, update project.StatusUpdate) {
	var err error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		if _, err = c.store.UpdateStatus(ctx, projectID, update); err == nil {
			return
		}
		if errors.Is(err, faults.ErrNotFound) || errors.Is(err, faults.ErrConflict) {
			break
		}
		time.Sleep(persistBackoff * time.Duration(attempt))
	}
	c.logger.Error("failed to record run outcome",
		logging.String(logging.FieldProjectID, projectID),
		logging.String("status", string(update.Status)),
		logging.Error(err))
}

func diagnosticFor(stg stagerun.Stage, err error) string {
	var failure *stagerun.StageFailure
	if errors.As(err, &failure) {
		return faults.Truncate(failure.Diagnostic(), diagnosticLimit)
	}
	return faults.Truncate(fmt.Sprintf("stage %s: %s", stg.Name, faults.Message(err)), diagnosticLimit)
}
