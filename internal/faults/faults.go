package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUpload      = errors.New("upload error")
	ErrNotFound    = errors.New("not found")
	ErrWorkspace   = errors.New("workspace error")
	ErrStage       = errors.New("stage failure")
	ErrSpawn       = errors.New("spawn error")
	ErrPersistence = errors.New("persistence error")
	ErrTimeout     = errors.New("timeout")
	ErrBusy        = errors.New("pipeline busy")
	ErrConflict    = errors.New("status conflict")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrPersistence
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Message extracts a human-readable diagnostic from an error, stripping the
// sentinel prefix when present.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	for _, marker := range []error{ErrUpload, ErrNotFound, ErrWorkspace, ErrStage, ErrSpawn, ErrPersistence, ErrTimeout, ErrBusy, ErrConflict} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(msg, prefix))
		}
	}
	return msg
}

// Truncate caps a diagnostic message at max runes, appending an ellipsis when cut.
func Truncate(message string, max int) string {
	message = strings.TrimSpace(message)
	if max <= 0 {
		return message
	}
	runes := []rune(message)
	if len(runes) <= max {
		return message
	}
	return string(runes[:max]) + "..."
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
