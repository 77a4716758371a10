// Package pipeline coordinates translation runs. The Coordinator owns the
// single run lock, drives projects through the lifecycle state machine, and
// executes the stage sequence against the shared workspace.
package pipeline
