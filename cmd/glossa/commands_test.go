package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glossa/internal/faults"
	"glossa/internal/logging"
	"glossa/internal/project"
	"glossa/internal/server"
	"glossa/internal/testsupport"
)

type recordingTriggerer struct {
	err   error
	calls []string
}

func (r *recordingTriggerer) Trigger(_ context.Context, projectID string) error {
	r.calls = append(r.calls, projectID)
	return r.err
}

type cliFixture struct {
	store   *project.MemoryStore
	trigger *recordingTriggerer
	apiURL  string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := project.NewMemoryStore()
	trigger := &recordingTriggerer{}
	srv := server.New(cfg, store, trigger, logging.NewNop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &cliFixture{store: store, trigger: trigger, apiURL: ts.URL}
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(append(args, "--api", f.apiURL))
	err := cmd.Execute()
	return buf.String(), err
}

func TestUploadCommandCreatesProject(t *testing.T) {
	f := newCLIFixture(t)
	source := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(source, []byte("%PDF"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	out, err := f.run(t, "upload", source, "--owner", "owner-1", "--title", "Report")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.Contains(out, "Created project") {
		t.Fatalf("unexpected output %q", out)
	}

	projects, err := f.store.ListByOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(projects) != 1 || projects[0].Title != "Report" {
		t.Fatalf("unexpected projects %+v", projects)
	}
}

func TestUploadCommandRequiresOwner(t *testing.T) {
	f := newCLIFixture(t)
	source := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(source, []byte("%PDF"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if _, err := f.run(t, "upload", source); err == nil {
		t.Fatal("expected owner requirement error")
	}
}

func TestTranslateCommand(t *testing.T) {
	f := newCLIFixture(t)
	proj := testsupport.NewProject(t, f.store, "owner-1", "doc", "/tmp/doc.pdf")

	out, err := f.run(t, "translate", proj.ID)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if !strings.Contains(out, "Translation started") {
		t.Fatalf("unexpected output %q", out)
	}
	if len(f.trigger.calls) != 1 || f.trigger.calls[0] != proj.ID {
		t.Fatalf("unexpected trigger calls %v", f.trigger.calls)
	}
}

func TestTranslateCommandSurfacesBusy(t *testing.T) {
	f := newCLIFixture(t)
	f.trigger.err = faults.Wrap(faults.ErrBusy, "pipeline", "trigger", "run in progress", nil)
	proj := testsupport.NewProject(t, f.store, "owner-1", "doc", "/tmp/doc.pdf")

	_, err := f.run(t, "translate", proj.ID)
	if err == nil || !strings.Contains(err.Error(), "another translation is in progress") {
		t.Fatalf("expected busy error, got %v", err)
	}
}

func TestStatusCommand(t *testing.T) {
	f := newCLIFixture(t)
	proj := testsupport.NewProject(t, f.store, "owner-1", "My Doc", "/tmp/doc.pdf")

	out, err := f.run(t, "status", proj.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "My Doc") || !strings.Contains(out, "pending") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStatusCommandUnknownProject(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "status", "nope")
	if err == nil || !strings.Contains(err.Error(), "project not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestProjectsCommandRendersTable(t *testing.T) {
	f := newCLIFixture(t)
	testsupport.NewProject(t, f.store, "owner-1", "alpha", "/tmp/a.pdf")
	testsupport.NewProject(t, f.store, "owner-1", "beta", "/tmp/b.pdf")
	testsupport.NewProject(t, f.store, "owner-2", "other", "/tmp/c.pdf")

	out, err := f.run(t, "projects", "--owner", "owner-1")
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if !strings.Contains(out, "alpha") || !strings.Contains(out, "beta") {
		t.Fatalf("expected owner projects in output %q", out)
	}
	if strings.Contains(out, "other") {
		t.Fatalf("foreign project leaked into output %q", out)
	}
}

func TestDownloadCommand(t *testing.T) {
	f := newCLIFixture(t)
	proj := testsupport.NewProject(t, f.store, "owner-1", "doc", "/tmp/doc.pdf")

	result := filepath.Join(t.TempDir(), "translated.pdf")
	if err := os.WriteFile(result, []byte("%PDF result"), 0o644); err != nil {
		t.Fatalf("write result: %v", err)
	}
	ctx := context.Background()
	if _, err := f.store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{Status: project.StatusProcessing}); err != nil {
		t.Fatalf("to processing: %v", err)
	}
	if _, err := f.store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{Status: project.StatusCompleted, ResultRef: result}); err != nil {
		t.Fatalf("to completed: %v", err)
	}

	target := filepath.Join(t.TempDir(), "out.pdf")
	out, err := f.run(t, "download", proj.ID, "--output", target)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !strings.Contains(out, "Saved") {
		t.Fatalf("unexpected output %q", out)
	}
	saved, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(saved) != "%PDF result" {
		t.Fatalf("unexpected saved content %q", saved)
	}
}

func TestHealthCommand(t *testing.T) {
	f := newCLIFixture(t)
	testsupport.NewProject(t, f.store, "owner-1", "doc", "/tmp/doc.pdf")

	out, err := f.run(t, "health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	if !strings.Contains(out, "1 total") {
		t.Fatalf("unexpected output %q", out)
	}
}
