// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned by manual triggers while another pass holds the sync lock.
var ErrSyncInProgress = errors.New("a sync pass is already running")

// Record kinds used in ValidationSkip.
const (
	KindVenue = "venue"
	KindEvent = "event"
)

// Skip reasons reported by the normalizers.
const (
	ReasonInvalidID          = "invalid_id"
	ReasonInvalidCoordinates = "invalid_coordinates"
	ReasonDuplicateID        = "duplicate_id"
	ReasonInvalidVenue       = "invalid_venue"
	ReasonUnknownVenue       = "unknown_venue"
	ReasonInvalidDate        = "invalid_date"
)

// ValidationSkip describes one feed record dropped during normalization.
// Skips are collected and reported, never returned as a pass error.
type ValidationSkip struct {
	Kind       string `json:"kind"`
	ExternalID string `json:"external_id"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
}

func (s ValidationSkip) Error() string {
	if s.Detail != "" {
		return fmt.Sprintf("skip %s %q: %s (%s)", s.Kind, s.ExternalID, s.Reason, s.Detail)
	}
	return fmt.Sprintf("skip %s %q: %s", s.Kind, s.ExternalID, s.Reason)
}

// NotInitializedError is returned by RefreshEvents when the store holds no venues.
type NotInitializedError struct{}

func (e *NotInitializedError) Error() string {
	return "store is not initialized: no venues persisted, run initialize first"
}

// SyncError reports a failed persistence step of a pass.
type SyncError struct {
	Op      string // gateway operation, e.g. "bulk_upsert_events"
	Records int    // records the operation was called with
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s (%d records): %v", e.Op, e.Records, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// Gateway operation names used in SyncError and logs.
const (
	OpCountVenues     = "count_venues"
	OpListVenues      = "list_venues"
	OpUpsertVenues    = "bulk_upsert_venues"
	OpDeleteVenues    = "delete_venues"
	OpFindEvents      = "find_events_by_venue_refs"
	OpUpsertEvents    = "bulk_upsert_events"
	OpDeleteEvents    = "delete_events"
	OpFindVenuesByIDs = "find_venues_by_internal_ids"
)
