// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package api provides the operator HTTP surface of Culturemap on chi.

Endpoints:

	GET  /api/v1/health           health summary (always 200)
	GET  /api/v1/health/live      liveness check
	GET  /api/v1/health/ready     readiness check, 503 until the store answers
	POST /api/v1/sync/initialize  bootstrap if the store is empty
	POST /api/v1/sync/refresh     incremental event refresh
	GET  /api/v1/sync/status      last reports, last error, next scheduled refresh
	GET  /api/v1/ws               WebSocket sync notifications
	GET  /metrics                 Prometheus metrics

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 12}}
	{"success": false, "error": {"code": "NOT_INITIALIZED", "message": "..."}, "meta": {...}}

Sync trigger failures map to:

	409 NOT_INITIALIZED    refresh before any venue was persisted
	409 SYNC_IN_PROGRESS   another pass holds the sync lock
	502 UPSTREAM_ERROR     a feed could not be fetched or parsed
	500 SYNC_FAILED        a persistence step failed

Middleware: request and correlation ids, RealIP, Recoverer, go-chi/cors,
per-IP httprate limits (tighter for sync triggers), security headers and
Prometheus request metrics.
*/
package api
