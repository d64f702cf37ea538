// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"sort"

	"github.com/tomtom215/culturemap/internal/models"
)

// selectRetained splits venues into the top limit by EventCount and the rest.
// Ties keep the input order, which is feed order during bootstrap.
// A limit <= 0 retains everything.
func selectRetained(venues []models.Venue, limit int) (kept, discarded []models.Venue) {
	ranked := make([]models.Venue, len(venues))
	copy(ranked, venues)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EventCount > ranked[j].EventCount
	})

	if limit <= 0 || limit >= len(ranked) {
		return ranked, nil
	}
	return ranked[:limit], ranked[limit:]
}

// buildEventRefs groups event IDs by venue, each list ordered by external event ID.
func buildEventRefs(events []models.Event) map[string][]string {
	byVenue := make(map[string][]*models.Event)
	for i := range events {
		e := &events[i]
		byVenue[e.VenueRef] = append(byVenue[e.VenueRef], e)
	}

	refs := make(map[string][]string, len(byVenue))
	for venueRef, list := range byVenue {
		sort.Slice(list, func(i, j int) bool { return list[i].EventID < list[j].EventID })
		ids := make([]string, len(list))
		for i, e := range list {
			ids[i] = e.ID
		}
		refs[venueRef] = ids
	}
	return refs
}
