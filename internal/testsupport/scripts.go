package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"glossa/internal/config"
)

// WriteStageScript writes an executable /bin/sh script into the config's
// script directory and returns its path. The test config's interpreter is
// /bin/sh, so bodies are plain shell.
func WriteStageScript(t testing.TB, cfg *config.Config, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(cfg.Pipeline.ScriptDir, 0o755); err != nil {
		t.Fatalf("mkdir script dir: %v", err)
	}
	target := filepath.Join(cfg.Pipeline.ScriptDir, name)
	if err := os.WriteFile(target, []byte(body), 0o755); err != nil {
		t.Fatalf("write stage script %s: %v", name, err)
	}
	return target
}

// StubStageScripts writes trivially succeeding scripts for the given names.
func StubStageScripts(t testing.TB, cfg *config.Config, names ...string) {
	t.Helper()

	for _, name := range names {
		WriteStageScript(t, cfg, name, "#!/bin/sh\nexit 0\n")
	}
}
