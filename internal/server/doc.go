// Package server exposes the HTTP control surface: document upload, run
// triggering, status polling, artifact download, and health reporting.
package server
