package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// StatusUpdate describes an atomic status transition. ResultRef is honored
// only when moving to completed; Diagnostic only when moving to failed.
type StatusUpdate struct {
	Status     Status
	ResultRef  string
	Diagnostic string
}

// HealthSummary describes aggregated project counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Store is the persistence interface the pipeline core consumes. The SQLite
// implementation is the durable store; MemoryStore is the in-process
// reference implementation used by tests.
type Store interface {
	// Create inserts a new pending project and returns it with an assigned id.
	Create(ctx context.Context, ownerID, title, sourceRef string) (*Project, error)
	// Get fetches a project by id, failing with faults.ErrNotFound when absent.
	Get(ctx context.Context, id string) (*Project, error)
	// ListByOwner returns the owner's projects, most recent first.
	ListByOwner(ctx context.Context, ownerID string) ([]*Project, error)
	// UpdateStatus applies a transition atomically, enforcing the state
	// machine and the resultRef-iff-completed invariant. It fails with
	// faults.ErrConflict when the current status does not permit the move.
	UpdateStatus(ctx context.Context, id string, update StatusUpdate) (*Project, error)
	// ReclaimProcessing fails every project stuck in processing, recording
	// the given diagnostic. Used at daemon startup to recover orphans.
	ReclaimProcessing(ctx context.Context, diagnostic string) (int64, error)
	// Health aggregates project counts per status.
	Health(ctx context.Context) (HealthSummary, error)
	Close() error
}

func validateCreate(ownerID, sourceRef string) error {
	if strings.TrimSpace(ownerID) == "" {
		return errors.New("owner id is required")
	}
	if strings.TrimSpace(sourceRef) == "" {
		return errors.New("source ref is required")
	}
	return nil
}

func validateUpdate(update StatusUpdate) error {
	if _, ok := statusSet[update.Status]; !ok {
		return fmt.Errorf("unknown status %q", update.Status)
	}
	if _, ok := transitionPriors[update.Status]; !ok {
		return fmt.Errorf("status %q is not a transition target", update.Status)
	}
	if update.Status == StatusCompleted && strings.TrimSpace(update.ResultRef) == "" {
		return errors.New("completed requires a result ref")
	}
	if update.Status != StatusCompleted && update.ResultRef != "" {
		return fmt.Errorf("result ref only accompanies completed, not %q", update.Status)
	}
	return nil
}

func healthFromCounts(counts map[Status]int) HealthSummary {
	health := HealthSummary{}
	for status, count := range counts {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusProcessing:
			health.Processing += count
		case StatusCompleted:
			health.Completed += count
		case StatusFailed:
			health.Failed += count
		}
	}
	return health
}
