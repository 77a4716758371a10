package stagerun

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"glossa/internal/config"
	"glossa/internal/logging"
)

// diagnosticTailBytes caps the per-stage output tail retained for diagnostics.
const diagnosticTailBytes = 4096

// Runner executes one external stage program at a time and translates its
// outcome into a success/failure result. Outcome is determined solely by
// process exit status; output streams pass through for observability, with a
// bounded tail retained for the failed-project diagnostic.
type Runner struct {
	interpreter string
	scriptDir   string
	workDir     string
	timeout     time.Duration
	logger      *slog.Logger
	stdout      io.Writer
	stderr      io.Writer
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithOutput redirects the pass-through stage output streams (used in tests).
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		if stdout != nil {
			r.stdout = stdout
		}
		if stderr != nil {
			r.stderr = stderr
		}
	}
}

// NewRunner constructs a stage runner. workDir becomes the working directory
// of every stage process, so scripts reach the workspace via its well-known
// relative paths.
func NewRunner(cfg *config.Config, workDir string, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		interpreter: cfg.Pipeline.Interpreter,
		scriptDir:   cfg.Pipeline.ScriptDir,
		workDir:     workDir,
		timeout:     time.Duration(cfg.Pipeline.StageTimeout) * time.Second,
		logger:      logging.NewComponentLogger(logger, "stage-runner"),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Invoke runs a single stage to completion. Exit code 0 maps to nil; any
// other exit maps to *StageFailure; a process that never started maps to
// *SpawnError.
func (r *Runner) Invoke(ctx context.Context, stg Stage) error {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	script := filepath.Join(r.scriptDir, stg.Script)
	tail := newTailWriter(diagnosticTailBytes)

	cmd := exec.CommandContext(runCtx, r.interpreter, script) //nolint:gosec
	cmd.Dir = r.workDir
	cmd.Stdout = io.MultiWriter(r.stdout, tail)
	cmd.Stderr = io.MultiWriter(r.stderr, tail)

	logger := logging.WithContext(ctx, r.logger)
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String(logging.FieldStage, stg.Name),
		logging.Int("ordinal", stg.Ordinal),
		logging.String("script", script),
	)
	start := time.Now()

	if err := cmd.Start(); err != nil {
		logger.Error("stage failed to start",
			logging.String(logging.FieldEventType, "stage_spawn_failed"),
			logging.String(logging.FieldStage, stg.Name),
			logging.Error(err),
		)
		return &SpawnError{Stage: stg.Name, Cause: err}
	}

	waitErr := cmd.Wait()
	elapsed := time.Since(start)
	if waitErr == nil {
		logger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"),
			logging.String(logging.FieldStage, stg.Name),
			logging.Duration("stage_duration", elapsed),
		)
		return nil
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		failure := &StageFailure{Stage: stg.Name, ExitCode: -1, TimedOut: true, Output: tail.String()}
		logger.Error("stage timed out",
			logging.String(logging.FieldEventType, "stage_timeout"),
			logging.String(logging.FieldStage, stg.Name),
			logging.Duration("stage_duration", elapsed),
			logging.Duration("timeout", r.timeout),
		)
		return failure
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		failure := &StageFailure{Stage: stg.Name, ExitCode: exitErr.ExitCode(), Output: tail.String()}
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String(logging.FieldStage, stg.Name),
			logging.Int("exit_code", failure.ExitCode),
			logging.Duration("stage_duration", elapsed),
		)
		return failure
	}

	logger.Error("stage wait failed",
		logging.String(logging.FieldEventType, "stage_spawn_failed"),
		logging.String(logging.FieldStage, stg.Name),
		logging.Error(waitErr),
	)
	return &SpawnError{Stage: stg.Name, Cause: waitErr}
}

// tailWriter retains the last limit bytes written through it.
type tailWriter struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func newTailWriter(limit int) *tailWriter {
	return &tailWriter{limit: limit}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = append(w.buf, p...)
	if len(w.buf) > w.limit {
		w.buf = w.buf[len(w.buf)-w.limit:]
	}
	return len(p), nil
}

func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(w.buf)
}
