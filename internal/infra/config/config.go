// Package config provides application-wide configuration loaded from env vars.
// All fields have safe defaults so the binary runs locally without any env
// setup. An optional YAML file (PHAROS_CONFIG) can override the defaults;
// env vars win over the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the Pharos MCP server.
type Config struct {
	// Upstream GraphQL endpoint
	Endpoint  string // PHAROS_ENDPOINT — default: "https://pharos-api.ncats.io/graphql"
	UserAgent string // PHAROS_USER_AGENT — default: "pharos-mcp-server/" + version

	// HTTP listen address
	Host string // PHAROS_HOST — default: "0.0.0.0"
	Port int    // PHAROS_PORT — default: 8080

	// Upstream request timeout; 0 inherits the transport default.
	QueryTimeout time.Duration // PHAROS_QUERY_TIMEOUT — default: 30s

	// Invocation log database path; empty disables the log entirely.
	AuditDBPath string // PHAROS_AUDIT_DB — default: "" (disabled)
}

const (
	envKeyConfigFile   = "PHAROS_CONFIG"
	envKeyEndpoint     = "PHAROS_ENDPOINT"
	envKeyUserAgent    = "PHAROS_USER_AGENT"
	envKeyHost         = "PHAROS_HOST"
	envKeyPort         = "PHAROS_PORT"
	envKeyQueryTimeout = "PHAROS_QUERY_TIMEOUT"
	envKeyAuditDBPath  = "PHAROS_AUDIT_DB"
)

// DefaultEndpoint is the public Pharos GraphQL API.
const DefaultEndpoint = "https://pharos-api.ncats.io/graphql"

// Load reads configuration in precedence order: defaults, then the optional
// YAML file named by PHAROS_CONFIG, then env vars. A missing or unreadable
// config file is an error only when PHAROS_CONFIG is explicitly set.
func Load() (Config, error) {
	cfg := Config{
		Endpoint:     DefaultEndpoint,
		UserAgent:    "pharos-mcp-server/1.0",
		Host:         "0.0.0.0",
		Port:         8080,
		QueryTimeout: 30 * time.Second,
	}

	if path := os.Getenv(envKeyConfigFile); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Endpoint = envOr(envKeyEndpoint, cfg.Endpoint)
	cfg.UserAgent = envOr(envKeyUserAgent, cfg.UserAgent)
	cfg.Host = envOr(envKeyHost, cfg.Host)
	cfg.AuditDBPath = envOr(envKeyAuditDBPath, cfg.AuditDBPath)

	if v := os.Getenv(envKeyPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s %q: %w", envKeyPort, v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv(envKeyQueryTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s %q: %w", envKeyQueryTimeout, v, err)
		}
		cfg.QueryTimeout = d
	}

	return cfg, nil
}

// fileConfig is the YAML shape of the optional config file. Durations are
// strings ("30s") since yaml.v3 has no native time.Duration decoding.
type fileConfig struct {
	Endpoint     string `yaml:"endpoint"`
	UserAgent    string `yaml:"user_agent"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	QueryTimeout string `yaml:"query_timeout"`
	AuditDBPath  string `yaml:"audit_db_path"`
}

// loadFile overlays cfg with values from a YAML file. Zero-valued fields in
// the file leave the corresponding cfg field untouched.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}

	if file.Endpoint != "" {
		cfg.Endpoint = file.Endpoint
	}
	if file.UserAgent != "" {
		cfg.UserAgent = file.UserAgent
	}
	if file.Host != "" {
		cfg.Host = file.Host
	}
	if file.Port != 0 {
		cfg.Port = file.Port
	}
	if file.QueryTimeout != "" {
		d, parseErr := time.ParseDuration(file.QueryTimeout)
		if parseErr != nil {
			return fmt.Errorf("config: invalid query_timeout %q in %q: %w", file.QueryTimeout, path, parseErr)
		}
		cfg.QueryTimeout = d
	}
	if file.AuditDBPath != "" {
		cfg.AuditDBPath = file.AuditDBPath
	}

	return nil
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
