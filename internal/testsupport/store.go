package testsupport

import (
	"context"
	"testing"

	"glossa/internal/config"
	"glossa/internal/project"
)

// MustOpenStore opens a project.SQLiteStore for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *project.SQLiteStore {
	t.Helper()

	store, err := project.Open(cfg)
	if err != nil {
		t.Fatalf("project.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewProject creates a pending project for tests using the provided store.
func NewProject(t testing.TB, store project.Store, ownerID, title, sourceRef string) *project.Project {
	t.Helper()

	proj, err := store.Create(context.Background(), ownerID, title, sourceRef)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return proj
}
