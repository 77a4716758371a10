// Package config loads, normalizes, and validates glossa configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GLOSSA_SCRIPT_DIR. The Config type centralizes every knob the daemon and
// CLI need: upload and workspace directories, stage script locations, and
// the control surface bind address.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
