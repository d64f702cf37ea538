// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/tomtom215/culturemap/internal/models"
)

func baseEvent() models.Event {
	return models.Event{
		ID:            "e1",
		EventID:       1,
		TitleLocal:    "節目",
		TitleForeign:  "Show",
		VenueRef:      "v1",
		WhenScheduled: time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC),
		Description:   "desc",
		Presenter:     "LCSD",
	}
}

func TestChangedFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *models.Event)
		want   []string
	}{
		{"identical", func(e *models.Event) {}, nil},
		{"title local", func(e *models.Event) { e.TitleLocal = "新節目" }, []string{"title_local"}},
		{"title foreign", func(e *models.Event) { e.TitleForeign = "New Show" }, []string{"title_foreign"}},
		{"venue", func(e *models.Event) { e.VenueRef = "v2" }, []string{"venue_ref"}},
		{"date only", func(e *models.Event) { e.WhenScheduled = e.WhenScheduled.Add(24 * time.Hour) }, []string{"when_scheduled"}},
		{"same instant other zone", func(e *models.Event) {
			e.WhenScheduled = e.WhenScheduled.In(time.FixedZone("HKT", 8*3600))
		}, nil},
		{"description", func(e *models.Event) { e.Description = "other" }, []string{"description"}},
		{"presenter", func(e *models.Event) { e.Presenter = "Other" }, []string{"presenter"}},
		{"internal id ignored", func(e *models.Event) { e.ID = "different" }, nil},
		{"two fields", func(e *models.Event) {
			e.TitleForeign = "x"
			e.Presenter = "y"
		}, []string{"title_foreign", "presenter"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := baseEvent()
			fetched := baseEvent()
			tt.mutate(&fetched)
			got := changedFields(&stored, &fetched)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("changedFields() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiffEvents(t *testing.T) {
	stored := func(id string, eventID int64) models.Event {
		e := baseEvent()
		e.ID, e.EventID = id, eventID
		return e
	}
	fetched := func(eventID int64) models.Event {
		e := baseEvent()
		e.ID, e.EventID = "", eventID
		return e
	}

	existing := []models.Event{stored("a", 1), stored("b", 2), stored("c", 3)}
	changed := fetched(2)
	changed.Description = "updated"
	incoming := []models.Event{fetched(1), changed, fetched(4)}

	d := diffEvents(existing, incoming)

	if len(d.inserted) != 1 || d.inserted[0].EventID != 4 || d.inserted[0].ID != "" {
		t.Errorf("inserted = %+v, want event 4 without an id", d.inserted)
	}
	if len(d.changed) != 1 || d.changed[0].ID != "b" || d.changed[0].Description != "updated" {
		t.Errorf("changed = %+v, want event 2 carrying id b", d.changed)
	}
	if len(d.unchanged) != 1 || d.unchanged[0].ID != "a" {
		t.Errorf("unchanged = %+v, want event 1 with id a", d.unchanged)
	}
	sort.Strings(d.removed)
	if !reflect.DeepEqual(d.removed, []string{"c"}) {
		t.Errorf("removed = %v, want [c]", d.removed)
	}
}

func TestDiffEvents_Empty(t *testing.T) {
	d := diffEvents(nil, nil)
	if len(d.inserted)+len(d.changed)+len(d.unchanged)+len(d.removed) != 0 {
		t.Errorf("diff of empty sets = %+v, want empty", d)
	}
}

func TestSelectRetained(t *testing.T) {
	venues := []models.Venue{
		{ID: "a", EventCount: 1},
		{ID: "b", EventCount: 5},
		{ID: "c", EventCount: 3},
		{ID: "d", EventCount: 5},
		{ID: "e", EventCount: 0},
	}

	tests := []struct {
		name          string
		limit         int
		wantKept      []string
		wantDiscarded []string
	}{
		{"top two with tie in feed order", 2, []string{"b", "d"}, []string{"c", "a", "e"}},
		{"top three", 3, []string{"b", "d", "c"}, []string{"a", "e"}},
		{"limit above size", 10, []string{"b", "d", "c", "a", "e"}, nil},
		{"zero keeps all", 0, []string{"b", "d", "c", "a", "e"}, nil},
		{"negative keeps all", -1, []string{"b", "d", "c", "a", "e"}, nil},
	}

	ids := func(vs []models.Venue) []string {
		var out []string
		for _, v := range vs {
			out = append(out, v.ID)
		}
		return out
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept, discarded := selectRetained(venues, tt.limit)
			if got := ids(kept); !reflect.DeepEqual(got, tt.wantKept) {
				t.Errorf("kept = %v, want %v", got, tt.wantKept)
			}
			if got := ids(discarded); !reflect.DeepEqual(got, tt.wantDiscarded) {
				t.Errorf("discarded = %v, want %v", got, tt.wantDiscarded)
			}
		})
	}

	if venues[0].ID != "a" {
		t.Error("selectRetained reordered its input")
	}
}

func TestBuildEventRefs(t *testing.T) {
	events := []models.Event{
		{ID: "x3", EventID: 3, VenueRef: "v1"},
		{ID: "x1", EventID: 1, VenueRef: "v1"},
		{ID: "x2", EventID: 2, VenueRef: "v2"},
	}
	refs := buildEventRefs(events)
	if !reflect.DeepEqual(refs["v1"], []string{"x1", "x3"}) {
		t.Errorf("refs[v1] = %v, want [x1 x3]", refs["v1"])
	}
	if !reflect.DeepEqual(refs["v2"], []string{"x2"}) {
		t.Errorf("refs[v2] = %v, want [x2]", refs["v2"])
	}
	if _, ok := refs["v3"]; ok {
		t.Error("refs has an entry for a venue without events")
	}
}
