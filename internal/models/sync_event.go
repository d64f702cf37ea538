// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package models

import "time"

// SyncCompleted is published on the event bus after every successful pass
// and forwarded to WebSocket clients as a "sync_completed" message.
type SyncCompleted struct {
	Mode           string    `json:"mode"` // "bootstrap" or "refresh"
	CorrelationID  string    `json:"correlation_id,omitempty"`
	Skipped        bool      `json:"skipped,omitempty"`
	VenuesRetained int       `json:"venues_retained,omitempty"`
	EventsInserted int       `json:"events_inserted"`
	EventsUpdated  int       `json:"events_updated"`
	EventsDeleted  int       `json:"events_deleted"`
	EventsTotal    int       `json:"events_total"`
	DurationMs     int64     `json:"duration_ms"`
	CompletedAt    time.Time `json:"completed_at"`
}
