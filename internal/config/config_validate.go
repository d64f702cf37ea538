// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/culturemap/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	// Enumerations and numeric bounds are declared as struct tags.
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateFeed(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateSecurity()
}

// validateFeed validates the upstream feed settings
func (c *Config) validateFeed() error {
	if err := validateFeedURL(c.Feed.VenuesURL, "FEED_VENUES_URL"); err != nil {
		return err
	}
	if err := validateFeedURL(c.Feed.EventsURL, "FEED_EVENTS_URL"); err != nil {
		return err
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("FEED_TIMEOUT must be positive")
	}
	if c.Feed.MaxBodyBytes < 1024 {
		return fmt.Errorf("FEED_MAX_BODY_BYTES must be at least 1024")
	}
	if _, err := time.LoadLocation(c.Feed.Timezone); err != nil {
		return fmt.Errorf("FEED_TIMEZONE is invalid: %w", err)
	}
	return nil
}

// validateSync validates the reconciliation schedule
func (c *Config) validateSync() error {
	if c.Sync.RefreshEnabled && c.Sync.RefreshInterval < time.Minute {
		return fmt.Errorf("SYNC_REFRESH_INTERVAL must be at least 1m when refresh is enabled")
	}
	if c.Sync.RetryAttempts > 0 && c.Sync.RetryDelay <= 0 {
		return fmt.Errorf("SYNC_RETRY_DELAY must be positive when retries are enabled")
	}
	return nil
}

// validateStore validates the persistence backend settings
func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendBadger:
		if c.Store.Path == "" {
			return fmt.Errorf("STORE_PATH is required when STORE_BACKEND=badger")
		}
	case BackendDuckDB:
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when STORE_BACKEND=duckdb")
		}
	}
	return nil
}

// validateServer validates HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validateSecurity validates CORS and rate limiting
func (c *Config) validateSecurity() error {
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

// validateCORS rejects a wildcard origin in production
func (c *Config) validateCORS() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS reports whether a wildcard origin is configured outside production.
func (c *Config) ShouldWarnAboutCORS() bool {
	return !c.IsProduction() && c.hasWildcardCORS()
}

// validateRateLimits validates rate limit bounds (skipped when disabled)
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
	}
	if c.Security.RateLimitWindow < time.Second || c.Security.RateLimitWindow > time.Hour {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between 1s and 1h")
	}
	return nil
}
