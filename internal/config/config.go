// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: Override any setting via environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	client := feed.NewClient(&cfg.Feed)
type Config struct {
	Feed     FeedConfig     `koanf:"feed"`
	Sync     SyncConfig     `koanf:"sync"`
	Store    StoreConfig    `koanf:"store"`
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// FeedConfig holds upstream XML feed settings.
//
// Environment Variables:
//   - FEED_VENUES_URL: venue catalogue URL
//   - FEED_EVENTS_URL: event catalogue URL
//   - FEED_TIMEOUT: per-request timeout (default: 30s)
//   - FEED_TIMEZONE: zone used for dates without an offset (default: Asia/Hong_Kong)
type FeedConfig struct {
	VenuesURL string        `koanf:"venues_url"`
	EventsURL string        `koanf:"events_url"`
	Timeout   time.Duration `koanf:"timeout"`

	// MaxBodyBytes caps the size of a single feed document.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// RequestsPerSecond and Burst pace requests to the upstream host.
	// Zero RequestsPerSecond disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int     `koanf:"burst" validate:"gte=0"`

	CircuitBreakerEnabled bool `koanf:"circuit_breaker_enabled"`

	Timezone string `koanf:"timezone" validate:"required"`

	// Reference point for each venue's distance_km.
	ReferenceLatitude  float64 `koanf:"reference_latitude" validate:"latitude"`
	ReferenceLongitude float64 `koanf:"reference_longitude" validate:"longitude"`
}

// SyncConfig holds reconciliation settings
type SyncConfig struct {
	// RetentionLimit is how many venues survive bootstrap, ranked by event
	// count. Zero or negative keeps every venue.
	RetentionLimit      int           `koanf:"retention_limit"`
	InitializeOnStartup bool          `koanf:"initialize_on_startup"`
	RefreshEnabled      bool          `koanf:"refresh_enabled"`
	RefreshInterval     time.Duration `koanf:"refresh_interval"`
	RetryAttempts       int           `koanf:"retry_attempts" validate:"gte=0,lte=10"`
	RetryDelay          time.Duration `koanf:"retry_delay"`
}

// StoreConfig selects the persistence backend.
// Backend is one of badger, memory, duckdb. Path is the Badger directory.
type StoreConfig struct {
	Backend string `koanf:"backend" validate:"oneof=badger memory duckdb"`
	Path    string `koanf:"path"`
}

// DatabaseConfig holds DuckDB settings (used when store.backend=duckdb)
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = use NumCPU
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port" validate:"min=1,max=65535"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment" validate:"omitempty,oneof=development staging production"`
}

// SecurityConfig holds HTTP hardening settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Store backends
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
	BackendDuckDB = "duckdb"
)

// Load reads configuration in order of precedence:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment returns true when running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

// Location resolves the feed time zone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Feed.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
