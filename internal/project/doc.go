// Package project persists translation projects and exposes the status state
// machine the pipeline drives.
//
// The Store interface is consumed by the coordinator and the HTTP control
// surface. SQLiteStore is the durable implementation: WAL journal, embedded
// schema with a version gate, busy-retry on contention, and conditional
// UPDATEs so every transition is atomic. MemoryStore mirrors the same
// semantics in process for tests and reference use.
//
// Status transitions are deliberately narrow: pending->processing,
// processing->completed, processing->failed, failed->processing. A result
// reference exists exactly when a project is completed; UpdateStatus enforces
// both rules and rejects anything else with a conflict error.
package project
