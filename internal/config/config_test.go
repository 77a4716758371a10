package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"glossa/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Pipeline.Interpreter != "python3" {
		t.Fatalf("unexpected default interpreter %q", cfg.Pipeline.Interpreter)
	}
	if cfg.Paths.APIBind == "" {
		t.Fatal("default api_bind must be set")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected default log format %q", cfg.Logging.Format)
	}
	if !filepath.IsAbs(cfg.Paths.WorkspaceDir) {
		t.Fatalf("expected workspace dir to be absolute, got %q", cfg.Paths.WorkspaceDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := strings.Join([]string{
		"[paths]",
		`upload_dir = "` + filepath.Join(dir, "uploads") + `"`,
		`workspace_dir = "` + filepath.Join(dir, "work") + `"`,
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`api_bind = " 127.0.0.1:9000 "`,
		"[pipeline]",
		`script_dir = "` + filepath.Join(dir, "stages") + `"`,
		`interpreter = "/bin/sh"`,
		"stage_timeout = 30",
		"[logging]",
		`format = "JSON"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Fatalf("api_bind not trimmed: %q", cfg.Paths.APIBind)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("log format not lowered: %q", cfg.Logging.Format)
	}
	if cfg.Pipeline.StageTimeout != 30 {
		t.Fatalf("unexpected stage timeout %d", cfg.Pipeline.StageTimeout)
	}
}

func TestValidateRejectsSharedUploadWorkspace(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.UploadDir = "/tmp/glossa-same"
	cfg.Paths.WorkspaceDir = "/tmp/glossa-same"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error when upload and workspace dirs collide")
	}
}

func TestValidateRejectsNegativeTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Pipeline.StageTimeout = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for negative stage_timeout")
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.UploadDir = filepath.Join(dir, "uploads")
	cfg.Paths.WorkspaceDir = filepath.Join(dir, "work")
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{cfg.Paths.UploadDir, cfg.Paths.WorkspaceDir, cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", d, err)
		}
	}
}
