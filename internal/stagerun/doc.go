// Package stagerun defines the fixed pipeline stage sequence and executes
// stage programs as subprocesses.
//
// Each stage is an opaque external program that communicates through the
// well-known workspace paths and signals outcome solely via exit code. The
// Runner keeps the two failure classes distinct: StageFailure means the
// program ran and reported failure (non-zero exit or timeout), SpawnError
// means it never ran at all.
package stagerun
