package project

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a translation project.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// transitionPriors maps a target status to the statuses a project may hold
// when entering it. Pending is creation-only and never a transition target.
var transitionPriors = map[Status][]Status{
	StatusProcessing: {StatusPending, StatusFailed},
	StatusCompleted:  {StatusProcessing},
	StatusFailed:     {StatusProcessing},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, prior := range transitionPriors[to] {
		if prior == from {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status ends a run. Failed is terminal but
// retriable; completed is final.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Triggerable reports whether a new run may be started from this status.
func (s Status) Triggerable() bool {
	return s == StatusPending || s == StatusFailed
}

// Project is the durable record of one user's translation job.
type Project struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Status       Status    `json:"status"`
	SourceRef    string    `json:"sourceRef"`
	ResultRef    string    `json:"resultRef,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Clone returns a copy so callers can mutate records without aliasing store state.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
