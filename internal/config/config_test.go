package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Scanner.MaxConcurrency != 4 {
		t.Errorf("expected max_concurrency 4, got %d", cfg.Scanner.MaxConcurrency)
	}
	if cfg.Scanner.FollowSymlinks {
		t.Error("expected follow_symlinks to default to false")
	}
	if cfg.Healer.TabWidth != 2 {
		t.Errorf("expected tab_width 2, got %d", cfg.Healer.TabWidth)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %s", cfg.Server.Timeout)
	}
}

func TestConfigPrecedence(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")
	configContent := []byte(`
debug: true
scanner:
  max_concurrency: 8
healer:
  tab_width: 4
server:
  host: "127.0.0.1"
  port: 9090
  timeout: "1m"
`)
	if err := os.WriteFile(configPath, configContent, 0644); err != nil {
		t.Fatal(err)
	}

	// Set environment variables (should override config file)
	os.Setenv("KUBECURO_SERVER_PORT", "9091")
	defer os.Unsetenv("KUBECURO_SERVER_PORT")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}

	// Test config file values
	if !cfg.Debug {
		t.Error("expected debug true from config file")
	}
	if cfg.Scanner.MaxConcurrency != 8 {
		t.Errorf("expected max_concurrency 8, got %d", cfg.Scanner.MaxConcurrency)
	}
	if cfg.Healer.TabWidth != 4 {
		t.Errorf("expected tab_width 4, got %d", cfg.Healer.TabWidth)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1, got %s", cfg.Server.Host)
	}
	if cfg.Server.Timeout != time.Minute {
		t.Errorf("expected timeout 1m, got %s", cfg.Server.Timeout)
	}

	// Test environment variable override
	if cfg.Server.Port != 9091 {
		t.Errorf("expected env override port 9091, got %d", cfg.Server.Port)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")
	if err := os.WriteFile(configPath, []byte("healer:\n  tab_width: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	os.Setenv(KubecuroConfigPathEnvVar, configPath)
	defer os.Unsetenv(KubecuroConfigPathEnvVar)

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Healer.TabWidth != 3 {
		t.Errorf("expected tab_width 3 from env config path, got %d", cfg.Healer.TabWidth)
	}
}

func TestLoadEnvConfigPathMissing(t *testing.T) {
	os.Setenv(KubecuroConfigPathEnvVar, filepath.Join(t.TempDir(), "nope.yml"))
	defer os.Unsetenv(KubecuroConfigPathEnvVar)

	if _, err := Load(""); err == nil {
		t.Error("expected error when env config path points nowhere")
	}
}
