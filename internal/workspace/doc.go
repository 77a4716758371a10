// Package workspace manages the shared on-disk working area every pipeline
// stage reads from and writes to.
//
// The workspace is keyed by fixed well-known paths, not by project or run
// identity. Reset clears and recreates the whole tree before each run and
// Stage places the source artifact at the canonical input path, so stages can
// rely on a deterministic starting state. Because the area is shared, the
// coordinator must never let two runs touch it concurrently.
package workspace
