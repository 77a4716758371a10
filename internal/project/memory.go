package project

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"glossa/internal/faults"
)

// MemoryStore is the in-process reference implementation of Store. It applies
// the same state machine and invariants as the SQLite store and backs the
// package's contract tests plus any embedding-friendly deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*Project
	order    map[string]int
	seq      int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]*Project),
		order:    make(map[string]int),
	}
}

// Create inserts a new pending project.
func (m *MemoryStore) Create(_ context.Context, ownerID, title, sourceRef string) (*Project, error) {
	if err := validateCreate(ownerID, sourceRef); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	proj := &Project{
		ID:        uuid.NewString(),
		OwnerID:   strings.TrimSpace(ownerID),
		Title:     strings.TrimSpace(title),
		Status:    StatusPending,
		SourceRef: sourceRef,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.projects[proj.ID] = proj
	m.order[proj.ID] = m.seq
	return proj.Clone(), nil
}

// Get fetches a project by identifier.
func (m *MemoryStore) Get(_ context.Context, id string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	proj, ok := m.projects[id]
	if !ok {
		return nil, faults.Wrap(faults.ErrNotFound, "store", "get", fmt.Sprintf("project %s", id), nil)
	}
	return proj.Clone(), nil
}

// ListByOwner returns the owner's projects, most recent first.
func (m *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var projects []*Project
	for _, proj := range m.projects {
		if proj.OwnerID == ownerID {
			projects = append(projects, proj.Clone())
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return m.order[projects[i].ID] > m.order[projects[j].ID]
	})
	return projects, nil
}

// UpdateStatus applies a transition atomically under the store lock.
func (m *MemoryStore) UpdateStatus(_ context.Context, id string, update StatusUpdate) (*Project, error) {
	if err := validateUpdate(update); err != nil {
		return nil, faults.Wrap(faults.ErrConflict, "store", "update-status", err.Error(), nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	proj, ok := m.projects[id]
	if !ok {
		return nil, faults.Wrap(faults.ErrNotFound, "store", "update-status", fmt.Sprintf("project %s", id), nil)
	}
	if !CanTransition(proj.Status, update.Status) {
		return nil, faults.Wrap(faults.ErrConflict, "store", "update-status",
			fmt.Sprintf("cannot move project %s from %s to %s", id, proj.Status, update.Status), nil)
	}

	proj.Status = update.Status
	proj.ResultRef = update.ResultRef
	proj.ErrorMessage = update.Diagnostic
	proj.UpdatedAt = time.Now().UTC()
	return proj.Clone(), nil
}

// ReclaimProcessing fails every project left in processing.
func (m *MemoryStore) ReclaimProcessing(_ context.Context, diagnostic string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var reclaimed int64
	for _, proj := range m.projects {
		if proj.Status == StatusProcessing {
			proj.Status = StatusFailed
			proj.ResultRef = ""
			proj.ErrorMessage = diagnostic
			proj.UpdatedAt = time.Now().UTC()
			reclaimed++
		}
	}
	return reclaimed, nil
}

// Health aggregates project counts per status.
func (m *MemoryStore) Health(_ context.Context) (HealthSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[Status]int)
	for _, proj := range m.projects {
		counts[proj.Status]++
	}
	return healthFromCounts(counts), nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
