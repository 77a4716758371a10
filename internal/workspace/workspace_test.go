package workspace_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"glossa/internal/faults"
	"glossa/internal/logging"
	"glossa/internal/workspace"
)

func newManager(t *testing.T) *workspace.Manager {
	t.Helper()
	return workspace.NewManager(filepath.Join(t.TempDir(), "workspace"), logging.NewNop())
}

func treeSnapshot(t *testing.T, root string) []string {
	t.Helper()
	var entries []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		entries = append(entries, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("walk workspace: %v", err)
	}
	sort.Strings(entries)
	return entries
}

func TestResetCreatesLayoutOnFirstRun(t *testing.T) {
	mgr := newManager(t)
	if err := mgr.Reset(context.Background()); err != nil {
		t.Fatalf("Reset on missing tree: %v", err)
	}

	layout := mgr.Layout()
	for _, dir := range []string{layout.InputDir, layout.PagesDir, layout.OCRDir, layout.TranslationsDir, layout.OverlayDir, layout.OutputDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q after reset: %v", dir, err)
		}
	}
}

func TestResetIsIdempotent(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	if err := mgr.Reset(ctx); err != nil {
		t.Fatalf("first reset: %v", err)
	}

	// Leave droppings from a failed run behind.
	layout := mgr.Layout()
	if err := os.WriteFile(filepath.Join(layout.OCRDir, "page-1.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write dropping: %v", err)
	}
	if err := os.WriteFile(filepath.Join(layout.OutputDir, "stale.pdf"), []byte("stale"), 0o644); err != nil {
		t.Fatalf("write dropping: %v", err)
	}

	if err := mgr.Reset(ctx); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	after := treeSnapshot(t, layout.Root)

	if err := mgr.Reset(ctx); err != nil {
		t.Fatalf("third reset: %v", err)
	}
	again := treeSnapshot(t, layout.Root)

	if len(after) != len(again) {
		t.Fatalf("reset not idempotent: %v vs %v", after, again)
	}
	for i := range after {
		if after[i] != again[i] {
			t.Fatalf("reset not idempotent: %v vs %v", after, again)
		}
	}
	if _, err := os.Stat(filepath.Join(layout.OCRDir, "page-1.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected droppings to be cleared")
	}
}

func TestStageCopiesSourceToCanonicalInput(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	if err := mgr.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	src := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.7 test document"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := mgr.Stage(ctx, src); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	data, err := os.ReadFile(mgr.InputPath())
	if err != nil {
		t.Fatalf("read staged input: %v", err)
	}
	if string(data) != "%PDF-1.7 test document" {
		t.Fatalf("unexpected staged contents %q", data)
	}
}

func TestStageUnreadableSource(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	if err := mgr.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	err := mgr.Stage(ctx, filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, faults.ErrWorkspace) {
		t.Fatalf("expected workspace error, got %v", err)
	}
}

func TestStageRejectsDirectorySource(t *testing.T) {
	mgr := newManager(t)
	ctx := context.Background()
	if err := mgr.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	err := mgr.Stage(ctx, t.TempDir())
	if !errors.Is(err, faults.ErrWorkspace) {
		t.Fatalf("expected workspace error for directory source, got %v", err)
	}
}

func TestResultPathUnderOutputDir(t *testing.T) {
	mgr := newManager(t)
	layout := mgr.Layout()
	if filepath.Dir(mgr.ResultPath()) != layout.OutputDir {
		t.Fatalf("result path %q not under output dir %q", mgr.ResultPath(), layout.OutputDir)
	}
	if filepath.Dir(mgr.InputPath()) != layout.InputDir {
		t.Fatalf("input path %q not under input dir %q", mgr.InputPath(), layout.InputDir)
	}
}
