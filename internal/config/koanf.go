// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/culturemap/config.yaml",
	"/etc/culturemap/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Upstream LCSD open-data feeds.
const (
	DefaultVenuesURL = "https://www.lcsd.gov.hk/datagovhk/event/venues.xml"
	DefaultEventsURL = "https://www.lcsd.gov.hk/datagovhk/event/events.xml"
)

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			VenuesURL:             DefaultVenuesURL,
			EventsURL:             DefaultEventsURL,
			Timeout:               30 * time.Second,
			MaxBodyBytes:          64 << 20, // 64 MiB
			RequestsPerSecond:     2,
			Burst:                 2,
			CircuitBreakerEnabled: true,
			Timezone:              "Asia/Hong_Kong",
			ReferenceLatitude:     22.4148,
			ReferenceLongitude:    114.2045,
		},
		Sync: SyncConfig{
			RetentionLimit:      10,
			InitializeOnStartup: true,
			RefreshEnabled:      true,
			RefreshInterval:     6 * time.Hour,
			RetryAttempts:       3,
			RetryDelay:          2 * time.Second,
		},
		Store: StoreConfig{
			Backend: BackendBadger,
			Path:    "/data/culturemap",
		},
		Database: DatabaseConfig{
			Path:      "/data/culturemap.duckdb",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Server: ServerConfig{
			Port:        3858,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables, FEED_VENUES_URL -> feed.venues_url
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Feed
	"feed_venues_url":              "feed.venues_url",
	"feed_events_url":              "feed.events_url",
	"feed_timeout":                 "feed.timeout",
	"feed_max_body_bytes":          "feed.max_body_bytes",
	"feed_requests_per_second":     "feed.requests_per_second",
	"feed_burst":                   "feed.burst",
	"feed_circuit_breaker_enabled": "feed.circuit_breaker_enabled",
	"feed_timezone":                "feed.timezone",
	"reference_latitude":           "feed.reference_latitude",
	"reference_longitude":          "feed.reference_longitude",

	// Sync
	"retention_limit":            "sync.retention_limit",
	"sync_initialize_on_startup": "sync.initialize_on_startup",
	"sync_refresh_enabled":       "sync.refresh_enabled",
	"sync_refresh_interval":      "sync.refresh_interval",
	"sync_retry_attempts":        "sync.retry_attempts",
	"sync_retry_delay":           "sync.retry_delay",

	// Store
	"store_backend": "store.backend",
	"store_path":    "store.path",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - FEED_EVENTS_URL -> feed.events_url
//   - RETENTION_LIMIT -> sync.retention_limit
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
