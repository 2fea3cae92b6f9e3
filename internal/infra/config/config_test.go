// No t.Parallel() — env vars are process-global and not thread-safe.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		envKeyConfigFile, envKeyEndpoint, envKeyUserAgent,
		envKeyHost, envKeyPort, envKeyQueryTimeout, envKeyAuditDBPath,
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("expected Endpoint %q, got %q", DefaultEndpoint, cfg.Endpoint)
	}
	if cfg.UserAgent != "pharos-mcp-server/1.0" {
		t.Errorf("expected default UserAgent, got %q", cfg.UserAgent)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("expected Host '0.0.0.0', got %q", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected Port 8080, got %d", cfg.Port)
	}
	if cfg.QueryTimeout != 30*time.Second {
		t.Errorf("expected QueryTimeout 30s, got %v", cfg.QueryTimeout)
	}
	if cfg.AuditDBPath != "" {
		t.Errorf("expected empty AuditDBPath, got %q", cfg.AuditDBPath)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(envKeyEndpoint, "http://localhost:4000/graphql")
	t.Setenv(envKeyHost, "127.0.0.1")
	t.Setenv(envKeyPort, "9090")
	t.Setenv(envKeyQueryTimeout, "5s")
	t.Setenv(envKeyAuditDBPath, "/tmp/invocations.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Endpoint != "http://localhost:4000/graphql" {
		t.Errorf("expected custom Endpoint, got %q", cfg.Endpoint)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("expected Host '127.0.0.1', got %q", cfg.Host)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected Port 9090, got %d", cfg.Port)
	}
	if cfg.QueryTimeout != 5*time.Second {
		t.Errorf("expected QueryTimeout 5s, got %v", cfg.QueryTimeout)
	}
	if cfg.AuditDBPath != "/tmp/invocations.db" {
		t.Errorf("expected AuditDBPath '/tmp/invocations.db', got %q", cfg.AuditDBPath)
	}
}

func TestLoad_InvalidPort_ReturnsError(t *testing.T) {
	clearEnv(t)
	t.Setenv(envKeyPort, "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid port, got nil")
	}
}

func TestLoad_YAMLFile_EnvStillWins(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "pharos.yaml")
	content := "endpoint: http://file.example/graphql\nport: 7070\nquery_timeout: 10s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(envKeyConfigFile, path)
	t.Setenv(envKeyEndpoint, "http://env.example/graphql")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Env var overrides the file; file overrides defaults.
	if cfg.Endpoint != "http://env.example/graphql" {
		t.Errorf("expected env endpoint to win, got %q", cfg.Endpoint)
	}
	if cfg.Port != 7070 {
		t.Errorf("expected Port 7070 from file, got %d", cfg.Port)
	}
	if cfg.QueryTimeout != 10*time.Second {
		t.Errorf("expected QueryTimeout 10s from file, got %v", cfg.QueryTimeout)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Host != "0.0.0.0" {
		t.Errorf("expected default Host, got %q", cfg.Host)
	}
}

func TestLoad_MissingConfigFile_ReturnsError(t *testing.T) {
	clearEnv(t)
	t.Setenv(envKeyConfigFile, filepath.Join(t.TempDir(), "does-not-exist.yaml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file, got nil")
	}
}
