package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "test.db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "password123")
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	setRequiredEnv(t)

	cfg, errLoad := Load("")
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.ListenAddr != ":5000" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.JWTExpiry != 168*time.Hour {
		t.Fatalf("unexpected jwt expiry %v", cfg.JWTExpiry)
	}
	if cfg.SubmitLimitPerMinute != 3 || cfg.LoginLimitPer15Minutes != 5 {
		t.Fatalf("unexpected rate limits: %d %d", cfg.SubmitLimitPerMinute, cfg.LoginLimitPer15Minutes)
	}
	if !cfg.Development() {
		t.Fatalf("expected development mode by default")
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")

	if _, errLoad := Load(""); errLoad == nil {
		t.Fatalf("expected error for missing required config")
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_EXPIRY", "24h")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := "listenAddr: \":8080\"\nenvironment: production\nsubmitLimitPerMinute: 10\n"
	if errWrite := os.WriteFile(path, []byte(yamlBody), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("yaml listen addr not applied: %q", cfg.ListenAddr)
	}
	if cfg.Development() {
		t.Fatalf("expected production mode from yaml")
	}
	if cfg.SubmitLimitPerMinute != 10 {
		t.Fatalf("yaml rate limit not applied: %d", cfg.SubmitLimitPerMinute)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Fatalf("env expiry override not applied: %v", cfg.JWTExpiry)
	}
}
