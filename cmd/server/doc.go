// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package main is the entry point for the Culturemap server.

Culturemap mirrors the LCSD cultural venue and event XML feeds into a local
store. A bootstrap keeps the venues with the most upcoming events; refreshes
reconcile those venues and their events against the feeds on an interval.

# Application Architecture

The server runs its long-lived components under a Suture v4 supervisor tree:

	RootSupervisor ("culturemap")
	├── DataSupervisor ("data-layer")
	│   └── Store maintenance (Badger value-log GC or DuckDB checkpoint)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub
	│   ├── Event forwarder (sync.completed -> WebSocket)
	│   └── Sync Manager (periodic refresh)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Startup order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Store: BadgerDB (disk or memory) or DuckDB, from STORE_BACKEND
 4. Feed client: rate limited, optionally behind a circuit breaker
 5. Startup bootstrap, fatal only when the store is still empty
 6. HTTP router, supervisor tree

# Configuration

	FEED_VENUES_URL, FEED_EVENTS_URL   # upstream XML documents
	FEED_TIMEZONE=Asia/Hong_Kong       # zone for dates without an offset
	RETENTION_LIMIT=10                 # venues kept by bootstrap
	SYNC_REFRESH_INTERVAL=6h
	STORE_BACKEND=badger               # badger, memory or duckdb
	STORE_PATH=/data/culturemap
	HTTP_PORT=3858
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up
to 10s, the refresh loop stops, and the event bus and store are closed.
*/
package main
