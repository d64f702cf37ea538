// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package models

import (
	"time"
)

// Event is a scheduled programme held at a Venue.
//
// VenueRef holds the internal ID of the owning venue, never the external
// venue ID from the feed. EventID is the external identifier and is unique.
type Event struct {
	ID            string    `json:"id"`
	EventID       int64     `json:"event_id"`
	TitleLocal    string    `json:"title_local"`
	TitleForeign  string    `json:"title_foreign"`
	VenueRef      string    `json:"venue_ref"`
	WhenScheduled time.Time `json:"when_scheduled"`
	Description   string    `json:"description"`
	Presenter     string    `json:"presenter"`
}
