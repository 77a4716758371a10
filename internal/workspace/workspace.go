package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"glossa/internal/faults"
	"glossa/internal/fileutil"
	"glossa/internal/logging"
)

// Well-known names inside the workspace. Every stage script addresses these
// by convention; changing them is a pipeline-wide contract change.
const (
	inputDirName        = "input"
	pagesDirName        = "pages"
	ocrDirName          = "ocr"
	translationsDirName = "translations"
	overlayDirName      = "overlay"
	outputDirName       = "output"

	stagedInputName = "source.pdf"
	resultName      = "translated.pdf"
)

// Layout holds the resolved paths of the shared working area.
type Layout struct {
	Root            string
	InputDir        string
	PagesDir        string
	OCRDir          string
	TranslationsDir string
	OverlayDir      string
	OutputDir       string
}

// NewLayout resolves the well-known directory layout under root.
func NewLayout(root string) Layout {
	return Layout{
		Root:            root,
		InputDir:        filepath.Join(root, inputDirName),
		PagesDir:        filepath.Join(root, pagesDirName),
		OCRDir:          filepath.Join(root, ocrDirName),
		TranslationsDir: filepath.Join(root, translationsDirName),
		OverlayDir:      filepath.Join(root, overlayDirName),
		OutputDir:       filepath.Join(root, outputDirName),
	}
}

func (l Layout) dirs() []string {
	return []string{l.InputDir, l.PagesDir, l.OCRDir, l.TranslationsDir, l.OverlayDir, l.OutputDir}
}

// Manager owns the shared on-disk working area used by pipeline runs. It is a
// singleton resource: the coordinator serializes access so only one run ever
// touches it at a time.
type Manager struct {
	layout Layout
	logger *slog.Logger
}

// NewManager constructs a workspace manager rooted at the given directory.
func NewManager(root string, logger *slog.Logger) *Manager {
	return &Manager{
		layout: NewLayout(root),
		logger: logging.NewComponentLogger(logger, "workspace"),
	}
}

// Layout returns the resolved directory layout.
func (m *Manager) Layout() Layout {
	return m.layout
}

// InputPath returns the canonical staged input path the first stage reads.
func (m *Manager) InputPath() string {
	return filepath.Join(m.layout.InputDir, stagedInputName)
}

// ResultPath returns the compose stage's declared output artifact path.
func (m *Manager) ResultPath() string {
	return filepath.Join(m.layout.OutputDir, resultName)
}

// Reset deletes and recreates every directory used by the pipeline, leaving a
// clean deterministic tree. Idempotent: a second call yields the same empty
// state, and absent directories are not an error.
func (m *Manager) Reset(ctx context.Context) error {
	start := time.Now()
	if err := os.RemoveAll(m.layout.Root); err != nil {
		return faults.Wrap(faults.ErrWorkspace, "workspace", "reset", fmt.Sprintf("remove %s", m.layout.Root), err)
	}
	for _, dir := range m.layout.dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return faults.Wrap(faults.ErrWorkspace, "workspace", "reset", fmt.Sprintf("recreate %s", dir), err)
		}
	}
	logging.WithContext(ctx, m.logger).Debug("workspace reset",
		logging.String("root", m.layout.Root),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Stage copies the project's source artifact to the canonical input path. The
// copy is integrity-verified so a later stage never consumes a truncated
// document.
func (m *Manager) Stage(ctx context.Context, sourceRef string) error {
	if err := m.preflight(); err != nil {
		return err
	}
	info, err := os.Stat(sourceRef)
	if err != nil {
		return faults.Wrap(faults.ErrWorkspace, "workspace", "stage", fmt.Sprintf("source %s unreadable", sourceRef), err)
	}
	if info.IsDir() {
		return faults.Wrap(faults.ErrWorkspace, "workspace", "stage", fmt.Sprintf("source %s is a directory", sourceRef), nil)
	}
	if err := fileutil.CopyFileVerified(sourceRef, m.InputPath()); err != nil {
		return faults.Wrap(faults.ErrWorkspace, "workspace", "stage", "copy source to input", err)
	}
	logging.WithContext(ctx, m.logger).Debug("source staged",
		logging.String("source", sourceRef),
		logging.String("input", m.InputPath()),
		logging.Int64("bytes", info.Size()),
	)
	return nil
}
