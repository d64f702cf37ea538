// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package models

import (
	"time"
)

// Venue is a cultural venue retained from the upstream venue catalogue.
//
// Key Fields:
//   - ID: internal opaque identifier (UUID string), the target of Event.VenueRef
//   - VenueID: external identifier from the feed, unique across venues
//   - EventRefs: internal IDs of the venue's events, ordered by external event ID
//   - EventCount: always len(EventRefs) after a reconciliation pass
//
// DistanceKm is the great-circle distance from the configured reference point.
type Venue struct {
	ID          string    `json:"id"`
	VenueID     int64     `json:"venue_id"`
	NameLocal   string    `json:"name_local"`
	NameForeign string    `json:"name_foreign"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	DistanceKm  float64   `json:"distance_km"`
	EventRefs   []string  `json:"event_refs"`
	EventCount  int       `json:"event_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// SetEvents replaces the venue's event references and keeps EventCount in step.
func (v *Venue) SetEvents(refs []string, now time.Time) {
	if refs == nil {
		refs = []string{}
	}
	v.EventRefs = refs
	v.EventCount = len(refs)
	v.LastUpdated = now
}
