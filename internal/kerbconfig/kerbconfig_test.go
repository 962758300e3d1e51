package kerbconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsEmptyConfig(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataDir != "" || cfg.LogLevel != "" {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadFromParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "data_dir: /tmp/kerbin-data\nlog_level: debug\ndefault_session: main\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DataDir != "/tmp/kerbin-data" || cfg.LogLevel != "debug" || cfg.DefaultSession != "main" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadFromRejectsInvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: verbose\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatalf("expected validation error for invalid log_level")
	}
}

func TestResolvedDataDirPrefersExplicitOverride(t *testing.T) {
	cfg := &Config{DataDir: "/custom/dir"}
	dir, err := cfg.ResolvedDataDir()
	if err != nil {
		t.Fatalf("ResolvedDataDir: %v", err)
	}
	if dir != "/custom/dir" {
		t.Fatalf("dir = %q, want /custom/dir", dir)
	}
}
