// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"retention zero keeps all", func(c *Config) { c.Sync.RetentionLimit = 0 }, ""},
		{"memory backend without path", func(c *Config) { c.Store.Backend = BackendMemory; c.Store.Path = "" }, ""},
		{"badger without path", func(c *Config) { c.Store.Path = "" }, "STORE_PATH"},
		{"duckdb without path", func(c *Config) { c.Store.Backend = BackendDuckDB; c.Database.Path = "" }, "DUCKDB_PATH"},
		{"zero feed timeout", func(c *Config) { c.Feed.Timeout = 0 }, "FEED_TIMEOUT"},
		{"tiny body cap", func(c *Config) { c.Feed.MaxBodyBytes = 10 }, "FEED_MAX_BODY_BYTES"},
		{"ftp feed", func(c *Config) { c.Feed.EventsURL = "ftp://lcsd.gov.hk/events.xml" }, "FEED_EVENTS_URL scheme"},
		{"empty venues url", func(c *Config) { c.Feed.VenuesURL = "" }, "FEED_VENUES_URL is required"},
		{"credentials in url", func(c *Config) { c.Feed.VenuesURL = "https://u:p@lcsd.gov.hk/v.xml" }, "credentials"},
		{"short refresh interval", func(c *Config) { c.Sync.RefreshInterval = time.Second }, "SYNC_REFRESH_INTERVAL"},
		{"short interval with refresh disabled", func(c *Config) {
			c.Sync.RefreshEnabled = false
			c.Sync.RefreshInterval = 0
		}, ""},
		{"retries without delay", func(c *Config) { c.Sync.RetryDelay = 0 }, "SYNC_RETRY_DELAY"},
		{"reference latitude out of range", func(c *Config) { c.Feed.ReferenceLatitude = 95 }, "ReferenceLatitude"},
		{"unknown environment", func(c *Config) { c.Server.Environment = "qa" }, "Environment"},
		{"wildcard cors in production", func(c *Config) { c.Server.Environment = "production" }, "CORS_ORIGINS"},
		{"rate limit out of bounds", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled skips bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("wildcard CORS in development should warn")
	}

	cfg.Security.CORSOrigins = []string{"https://culturemap.example"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origins should not warn")
	}
}
