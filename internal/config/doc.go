// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package config provides centralized configuration management for Culturemap.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. Load validates the merged result
before returning it.

# Configuration Sources

  - Defaults: defaultConfig()
  - YAML file: CONFIG_PATH, or config.yaml / /etc/culturemap/config.yaml
  - Environment variables (highest priority)

# Environment Variables

Feed:
  - FEED_VENUES_URL, FEED_EVENTS_URL: upstream XML documents
  - FEED_TIMEOUT: per-request timeout (default: 30s)
  - FEED_MAX_BODY_BYTES: document size cap (default: 64MiB)
  - FEED_REQUESTS_PER_SECOND, FEED_BURST: request pacing
  - FEED_CIRCUIT_BREAKER_ENABLED: wrap the client in a circuit breaker (default: true)
  - FEED_TIMEZONE: zone for dates without an offset (default: Asia/Hong_Kong)
  - REFERENCE_LATITUDE, REFERENCE_LONGITUDE: origin for venue distances

Sync:
  - RETENTION_LIMIT: venues kept after bootstrap (default: 10, <=0 keeps all)
  - SYNC_INITIALIZE_ON_STARTUP: bootstrap an empty store at startup (default: true)
  - SYNC_REFRESH_ENABLED, SYNC_REFRESH_INTERVAL: periodic event refresh (default: true, 6h)
  - SYNC_RETRY_ATTEMPTS, SYNC_RETRY_DELAY: retries for feed fetch failures

Store:
  - STORE_BACKEND: badger, memory or duckdb (default: badger)
  - STORE_PATH: Badger directory (default: /data/culturemap)
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS: DuckDB settings

Server and security:
  - HTTP_PORT (default: 3858), HTTP_HOST, HTTP_TIMEOUT, ENVIRONMENT
  - CORS_ORIGINS: comma-separated list (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
*/
package config
