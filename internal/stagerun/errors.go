package stagerun

import (
	"fmt"
	"strings"

	"glossa/internal/faults"
)

// StageFailure reports a stage that ran and failed: a non-zero exit, or a
// timeout expiry. Output carries the captured tail of the stage's combined
// output for diagnostics.
type StageFailure struct {
	Stage    string
	ExitCode int
	TimedOut bool
	Output   string
}

func (e *StageFailure) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("stage %s timed out", e.Stage)
	}
	return fmt.Sprintf("stage %s exited with code %d", e.Stage, e.ExitCode)
}

func (e *StageFailure) Unwrap() []error {
	if e.TimedOut {
		return []error{faults.ErrStage, faults.ErrTimeout}
	}
	return []error{faults.ErrStage}
}

// Diagnostic renders the failure with the output tail for the project record.
func (e *StageFailure) Diagnostic() string {
	msg := e.Error()
	if tail := strings.TrimSpace(e.Output); tail != "" {
		msg = msg + ": " + tail
	}
	return msg
}

// SpawnError reports a stage that never ran: the process could not be
// started at all. Distinct from StageFailure so callers can tell "ran and
// failed" apart from "never ran".
type SpawnError struct {
	Stage string
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("stage %s failed to start: %v", e.Stage, e.Cause)
}

func (e *SpawnError) Unwrap() []error {
	return []error{faults.ErrSpawn, e.Cause}
}
