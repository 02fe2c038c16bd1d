package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Play.Mode != nil || cfg.Serve.Port != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[play]\nmode = \"scan\"\nperiod-ms = 1500.0\n\n[serve]\nport = 2222\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Play.Mode == nil || *cfg.Play.Mode != "scan" {
		t.Fatalf("expected mode scan, got %v", cfg.Play.Mode)
	}
	if cfg.Play.PeriodMs == nil || *cfg.Play.PeriodMs != 1500 {
		t.Fatalf("expected period 1500, got %v", cfg.Play.PeriodMs)
	}
	if cfg.Play.Sound != nil {
		t.Fatalf("expected sound to stay unset")
	}
	if cfg.Serve.Port == nil || *cfg.Serve.Port != 2222 {
		t.Fatalf("expected port 2222, got %v", cfg.Serve.Port)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[play\nmode="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSaveConfigRoundTripsTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spacelane", "config.toml")
	if err := SaveConfig(path, Template()); err != nil {
		t.Fatalf("save config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Version == nil || *cfg.Version != Version {
		t.Fatalf("expected version %d, got %v", Version, cfg.Version)
	}
	if cfg.Play.Mode == nil || *cfg.Play.Mode != "two" {
		t.Fatalf("expected template mode two, got %v", cfg.Play.Mode)
	}
	if cfg.Serve.Port == nil || *cfg.Serve.Port != DefaultSSHPort {
		t.Fatalf("expected default port, got %v", cfg.Serve.Port)
	}
}

func TestPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != filepath.Join("/tmp/cfg", "spacelane", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/tmp/data", "spacelane", "spacelane.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/tmp/data", "spacelane", "spacelane.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SPACELANE_TEST_HOST", "0.0.0.0")
	t.Setenv("SPACELANE_TEST_PORT", "nope")
	if got := GetEnv("SPACELANE_TEST_HOST", "localhost"); got != "0.0.0.0" {
		t.Fatalf("expected env value, got %q", got)
	}
	if got := GetEnv("SPACELANE_TEST_UNSET", "localhost"); got != "localhost" {
		t.Fatalf("expected fallback, got %q", got)
	}
	if got := GetEnvInt("SPACELANE_TEST_PORT", 22); got != 22 {
		t.Fatalf("expected fallback for bad int, got %d", got)
	}
}
