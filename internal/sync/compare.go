// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"github.com/tomtom215/culturemap/internal/models"
)

// fieldComparator decides whether one tracked event field is unchanged.
type fieldComparator struct {
	name  string
	equal func(a, b *models.Event) bool
}

// eventComparators lists every field a refresh treats as a change.
var eventComparators = []fieldComparator{
	{"title_local", func(a, b *models.Event) bool { return a.TitleLocal == b.TitleLocal }},
	{"title_foreign", func(a, b *models.Event) bool { return a.TitleForeign == b.TitleForeign }},
	{"venue_ref", func(a, b *models.Event) bool { return a.VenueRef == b.VenueRef }},
	{"when_scheduled", func(a, b *models.Event) bool { return a.WhenScheduled.Equal(b.WhenScheduled) }},
	{"description", func(a, b *models.Event) bool { return a.Description == b.Description }},
	{"presenter", func(a, b *models.Event) bool { return a.Presenter == b.Presenter }},
}

// changedFields returns the names of the fields that differ between stored and fetched.
func changedFields(stored, fetched *models.Event) []string {
	var changed []string
	for _, c := range eventComparators {
		if !c.equal(stored, fetched) {
			changed = append(changed, c.name)
		}
	}
	return changed
}

// eventDiff is the partition of a fetched event set against the stored one.
type eventDiff struct {
	inserted  []models.Event
	changed   []models.Event // carry the stored internal ID
	unchanged []models.Event // stored copies
	removed   []string       // internal IDs
}

// diffEvents partitions fetched against existing by external event ID.
func diffEvents(existing, fetched []models.Event) eventDiff {
	stored := make(map[int64]*models.Event, len(existing))
	for i := range existing {
		stored[existing[i].EventID] = &existing[i]
	}

	var d eventDiff
	seen := make(map[int64]struct{}, len(fetched))
	for i := range fetched {
		f := fetched[i]
		seen[f.EventID] = struct{}{}

		s, ok := stored[f.EventID]
		if !ok {
			d.inserted = append(d.inserted, f)
			continue
		}
		if len(changedFields(s, &f)) == 0 {
			d.unchanged = append(d.unchanged, *s)
			continue
		}
		f.ID = s.ID
		d.changed = append(d.changed, f)
	}

	for i := range existing {
		if _, ok := seen[existing[i].EventID]; !ok {
			d.removed = append(d.removed, existing[i].ID)
		}
	}
	return d
}
