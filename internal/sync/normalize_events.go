// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"strconv"
	"strings"

	"github.com/tomtom215/culturemap/internal/models"
)

// NormalizeEvents converts raw feed events into domain events bound to the
// internal IDs in index. Events whose venue is not in index are skipped, so
// index must only contain venues that are already persisted.
func NormalizeEvents(raw []models.RawEvent, index VenueIndex, opts NormalizeOptions) ([]models.Event, []ValidationSkip) {
	events := make([]models.Event, 0, len(raw))
	var skips []ValidationSkip
	position := make(map[int64]int, len(raw))
	loc := opts.location()

	skip := func(id, reason, detail string) {
		skips = append(skips, ValidationSkip{Kind: KindEvent, ExternalID: id, Reason: reason, Detail: detail})
	}

	for i := range raw {
		r := &raw[i]

		eventID, ok := parseExternalID(r.ID)
		if !ok {
			skip(r.ID, ReasonInvalidID, "")
			continue
		}
		venueID, ok := parseExternalID(r.VenueID)
		if !ok {
			skip(r.ID, ReasonInvalidVenue, "venueid "+strconv.Quote(strings.TrimSpace(r.VenueID)))
			continue
		}
		venueRef, ok := index[venueID]
		if !ok {
			skip(r.ID, ReasonUnknownVenue, "venueid "+strconv.FormatInt(venueID, 10))
			continue
		}
		when, err := ParseFeedDate(r.Date, loc)
		if err != nil {
			skip(r.ID, ReasonInvalidDate, err.Error())
			continue
		}

		e := models.Event{
			EventID:       eventID,
			TitleLocal:    textOr(r.TitleLocal, PlaceholderLocalName),
			TitleForeign:  textOr(r.TitleForeign, PlaceholderForeignTitle),
			VenueRef:      venueRef,
			WhenScheduled: when,
			Description:   textOr(r.Description, PlaceholderDescription),
			Presenter:     textOr(r.Presenter, PlaceholderPresenter),
		}

		if pos, dup := position[eventID]; dup {
			skip(strconv.FormatInt(eventID, 10), ReasonDuplicateID, "superseded by a later record")
			events[pos] = e
			continue
		}
		position[eventID] = len(events)
		events = append(events, e)
	}

	return events, skips
}
