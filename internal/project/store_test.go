package project_test

import (
	"context"
	"errors"
	"testing"

	"glossa/internal/faults"
	"glossa/internal/project"
	"glossa/internal/testsupport"
)

// storeUnderTest lets every contract test run against both implementations.
type storeUnderTest struct {
	name string
	open func(t *testing.T) project.Store
}

func stores() []storeUnderTest {
	return []storeUnderTest{
		{
			name: "sqlite",
			open: func(t *testing.T) project.Store {
				cfg := testsupport.NewConfig(t)
				return testsupport.MustOpenStore(t, cfg)
			},
		},
		{
			name: "memory",
			open: func(t *testing.T) project.Store {
				return project.NewMemoryStore()
			},
		},
	}
}

func TestCreateAssignsPending(t *testing.T) {
	for _, st := range stores() {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			ctx := context.Background()

			proj, err := store.Create(ctx, "owner-1", "Chemistry Notes", "/uploads/doc.pdf")
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if proj.ID == "" {
				t.Fatal("expected assigned id")
			}
			if proj.Status != project.StatusPending {
				t.Fatalf("expected pending, got %s", proj.Status)
			}
			if proj.ResultRef != "" {
				t.Fatal("result ref must be unset at creation")
			}
			if proj.CreatedAt.IsZero() {
				t.Fatal("expected creation timestamp")
			}

			fetched, err := store.Get(ctx, proj.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if fetched.OwnerID != "owner-1" || fetched.Title != "Chemistry Notes" || fetched.SourceRef != "/uploads/doc.pdf" {
				t.Fatalf("unexpected fetched project: %#v", fetched)
			}
		})
	}
}

func TestCreateValidation(t *testing.T) {
	for _, st := range stores() {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			ctx := context.Background()

			if _, err := store.Create(ctx, "", "Title", "/src"); err == nil {
				t.Fatal("expected error for empty owner")
			}
			if _, err := store.Create(ctx, "owner", "Title", ""); err == nil {
				t.Fatal("expected error for empty source ref")
			}
		})
	}
}

func TestGetUnknownProject(t *testing.T) {
	for _, st := range stores() {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			_, err := store.Get(context.Background(), "no-such-id")
			if !errors.Is(err, faults.ErrNotFound) {
				t.Fatalf("expected not-found, got %v", err)
			}
		})
	}
}

func TestUpdateStatusHappyPath(t *testing.T) {
	for _, st := range stores() {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			ctx := context.Background()
			proj := testsupport.NewProject(t, store, "owner-1", "Doc", "/uploads/doc.pdf")

			moved, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{Status: project.StatusProcessing})
			if err != nil {
				t.Fatalf("to processing: %v", err)
			}
			if moved.Status != project.StatusProcessing || moved.ResultRef != "" {
				t.Fatalf("unexpected project after processing: %#v", moved)
			}

			done, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{
				Status:    project.StatusCompleted,
				ResultRef: "/workspace/output/translated.pdf",
			})
			if err != nil {
				t.Fatalf("to completed: %v", err)
			}
			if done.Status != project.StatusCompleted {
				t.Fatalf("expected completed, got %s", done.Status)
			}
			if done.ResultRef != "/workspace/output/translated.pdf" {
				t.Fatalf("expected result ref, got %q", done.ResultRef)
			}
		})
	}
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	for _, st := range stores() {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			ctx := context.Background()
			proj := testsupport.NewProject(t, store, "owner-1", "Doc", "/uploads/doc.pdf")

			// pending -> completed skips processing and must be rejected.
			if _, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{
				Status:    project.StatusCompleted,
				ResultRef: "/out.pdf",
			}); !errors.Is(err, faults.ErrConflict) {
				t.Fatalf("expected conflict, got %v", err)
			}

			if _, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{Status: project.StatusProcessing}); err != nil {
				t.Fatalf("to processing: %v", err)
			}
			if _, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{Status: project.StatusProcessing}); !errors.Is(err, faults.ErrConflict) {
				t.Fatalf("expected conflict on double processing, got %v", err)
			}

			if _, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{
				Status:    project.StatusCompleted,
				ResultRef: "/out.pdf",
			}); err != nil {
				t.Fatalf("to completed: %v", err)
			}

			// Completed is final: no retrigger, no failure.
			if _, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{Status: project.StatusProcessing}); !errors.Is(err, faults.ErrConflict) {
				t.Fatalf("expected conflict retriggering completed, got %v", err)
			}
		})
	}
}

func TestUpdateStatusResultRefInvariant(t *testing.T) {
	for _, st := range stores() {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			ctx := context.Background()
			proj := testsupport.NewProject(t, store, "owner-1", "Doc", "/uploads/doc.pdf")

			if _, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{Status: project.StatusProcessing}); err != nil {
				t.Fatalf("to processing: %v", err)
			}

			// Completed without a result ref violates the invariant.
			if _, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{Status: project.StatusCompleted}); !errors.Is(err, faults.ErrConflict) {
				t.Fatalf("expected conflict for completed without result ref, got %v", err)
			}
			// A result ref on any other status does too.
			if _, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{
				Status:    project.StatusFailed,
				ResultRef: "/out.pdf",
			}); !errors.Is(err, faults.ErrConflict) {
				t.Fatalf("expected conflict for failed with result ref, got %v", err)
			}

			failed, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{
				Status:     project.StatusFailed,
				Diagnostic: "stage recognize-text: exit code 2",
			})
			if err != nil {
				t.Fatalf("to failed: %v", err)
			}
			if failed.ResultRef != "" {
				t.Fatal("failed project must carry no result ref")
			}
			if failed.ErrorMessage != "stage recognize-text: exit code 2" {
				t.Fatalf("expected diagnostic, got %q", failed.ErrorMessage)
			}

			// Retrigger clears the prior diagnostic.
			retried, err := store.UpdateStatus(ctx, proj.ID, project.StatusUpdate{Status: project.StatusProcessing})
			if err != nil {
				t.Fatalf("retrigger failed project: %v", err)
			}
			if retried.ErrorMessage != "" {
				t.Fatalf("expected cleared diagnostic, got %q", retried.ErrorMessage)
			}
		})
	}
}

func TestListByOwnerMostRecentFirst(t *testing.T) {
	for _, st := range stores() {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			ctx := context.Background()

			first := testsupport.NewProject(t, store, "owner-1", "First", "/uploads/a.pdf")
			second := testsupport.NewProject(t, store, "owner-1", "Second", "/uploads/b.pdf")
			testsupport.NewProject(t, store, "owner-2", "Other", "/uploads/c.pdf")

			projects, err := store.ListByOwner(ctx, "owner-1")
			if err != nil {
				t.Fatalf("ListByOwner: %v", err)
			}
			if len(projects) != 2 {
				t.Fatalf("expected 2 projects, got %d", len(projects))
			}
			if projects[0].ID != second.ID || projects[1].ID != first.ID {
				t.Fatalf("expected most-recent-first order, got %s then %s", projects[0].Title, projects[1].Title)
			}
		})
	}
}

func TestReclaimProcessing(t *testing.T) {
	for _, st := range stores() {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			ctx := context.Background()

			stuck := testsupport.NewProject(t, store, "owner-1", "Stuck", "/uploads/a.pdf")
			if _, err := store.UpdateStatus(ctx, stuck.ID, project.StatusUpdate{Status: project.StatusProcessing}); err != nil {
				t.Fatalf("to processing: %v", err)
			}
			idle := testsupport.NewProject(t, store, "owner-1", "Idle", "/uploads/b.pdf")

			reclaimed, err := store.ReclaimProcessing(ctx, "interrupted by daemon restart")
			if err != nil {
				t.Fatalf("ReclaimProcessing: %v", err)
			}
			if reclaimed != 1 {
				t.Fatalf("expected 1 reclaimed project, got %d", reclaimed)
			}

			swept, err := store.Get(ctx, stuck.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if swept.Status != project.StatusFailed || swept.ErrorMessage != "interrupted by daemon restart" {
				t.Fatalf("unexpected swept project: %#v", swept)
			}

			untouched, err := store.Get(ctx, idle.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if untouched.Status != project.StatusPending {
				t.Fatalf("pending project must not be swept, got %s", untouched.Status)
			}
		})
	}
}

func TestHealthCounts(t *testing.T) {
	for _, st := range stores() {
		t.Run(st.name, func(t *testing.T) {
			store := st.open(t)
			ctx := context.Background()

			testsupport.NewProject(t, store, "owner-1", "A", "/uploads/a.pdf")
			running := testsupport.NewProject(t, store, "owner-1", "B", "/uploads/b.pdf")
			if _, err := store.UpdateStatus(ctx, running.ID, project.StatusUpdate{Status: project.StatusProcessing}); err != nil {
				t.Fatalf("to processing: %v", err)
			}

			health, err := store.Health(ctx)
			if err != nil {
				t.Fatalf("Health: %v", err)
			}
			if health.Total != 2 || health.Pending != 1 || health.Processing != 1 {
				t.Fatalf("unexpected health summary: %#v", health)
			}
		})
	}
}
