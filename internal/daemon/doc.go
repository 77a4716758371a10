// Package daemon hosts the long-running glossa process: it binds the project
// store, the pipeline coordinator, and the HTTP control surface into a single
// lifecycle with flock-based locking to prevent multiple instances.
package daemon
