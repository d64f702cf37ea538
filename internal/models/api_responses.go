// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package models

import (
	"time"
)

// APIResponse is the standard wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"},
//	  "error": {"code": "NOT_INITIALIZED", "message": "store is empty, run initialize first"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
// QueryTimeMS is the handler's execution time, omitted when zero.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - NOT_INITIALIZED: refresh requested before bootstrap
//   - SYNC_IN_PROGRESS: another pass holds the sync lock
//   - UPSTREAM_ERROR: a feed could not be fetched or parsed
//   - SYNC_FAILED: a persistence step failed
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status      string     `json:"status"`
	Version     string     `json:"version"`
	Backend     string     `json:"backend"`
	StoreOK     bool       `json:"store_ok"`
	Initialized bool       `json:"initialized"`
	VenueCount  int        `json:"venue_count"`
	Uptime      float64    `json:"uptime_seconds"`
	LastSync    *time.Time `json:"last_sync,omitempty"`
}
