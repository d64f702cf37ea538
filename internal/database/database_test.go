// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/culturemap/internal/config"
	"github.com/tomtom215/culturemap/internal/models"
)

// testDBSemaphore limits concurrent database creation to prevent resource exhaustion in CI.
// Too many concurrent DuckDB CGO calls can hang under load, so it is held
// for the whole test and released in t.Cleanup.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes database creation.
var testDBMutex sync.Mutex

// setupTestDB creates a new in-memory test database with timeout protection.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	type result struct {
		db  *DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(cfg)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() { _ = res.db.Close() })
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s (DuckDB may be under resource pressure)")
		return nil
	}
}

func testVenue(venueID int64) models.Venue {
	return models.Venue{
		VenueID:     venueID,
		NameLocal:   fmt.Sprintf("場地 %d", venueID),
		NameForeign: fmt.Sprintf("Venue %d", venueID),
		Latitude:    22.3,
		Longitude:   114.17,
	}
}

func testEvent(eventID int64, venueRef string) models.Event {
	return models.Event{
		EventID:       eventID,
		TitleLocal:    "節目",
		TitleForeign:  fmt.Sprintf("Event %d", eventID),
		VenueRef:      venueRef,
		WhenScheduled: time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC),
		Description:   "No Description",
		Presenter:     "No Presenter",
	}
}

func TestNew_FileDatabase(t *testing.T) {
	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "culturemap.duckdb")
	db, err := New(&config.DatabaseConfig{Path: path, Threads: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := context.Background()
	if _, err := db.BulkUpsertVenues(ctx, []models.Venue{testVenue(1)}); err != nil {
		t.Fatalf("BulkUpsertVenues() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(&config.DatabaseConfig{Path: path, Threads: 1})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	n, err := reopened.CountVenues(ctx)
	if err != nil {
		t.Fatalf("CountVenues() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountVenues() after reopen = %d, want 1", n)
	}
}

func TestBulkUpsertVenues_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	v := testVenue(50110014)
	v.DistanceKm = 3.42
	v.EventRefs = []string{"e-1", "e-2"}
	v.EventCount = 2
	v.LastUpdated = time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("HKT", 8*3600))

	ids, err := db.BulkUpsertVenues(ctx, []models.Venue{v, testVenue(2)})
	if err != nil {
		t.Fatalf("BulkUpsertVenues() error = %v", err)
	}
	if len(ids) != 2 || ids[0] == "" || ids[0] == ids[1] {
		t.Fatalf("ids = %v, want two distinct ids", ids)
	}

	got, err := db.FindVenuesByInternalIDs(ctx, []string{ids[0]})
	if err != nil {
		t.Fatalf("FindVenuesByInternalIDs() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("found %d venues, want 1", len(got))
	}
	g := got[0]
	if g.ID != ids[0] || g.VenueID != 50110014 || g.NameLocal != v.NameLocal || g.DistanceKm != 3.42 {
		t.Errorf("venue = %+v", g)
	}
	if len(g.EventRefs) != 2 || g.EventRefs[1] != "e-2" || g.EventCount != 2 {
		t.Errorf("event refs = %v count %d", g.EventRefs, g.EventCount)
	}
	if !g.LastUpdated.Equal(v.LastUpdated) {
		t.Errorf("LastUpdated = %v, want %v", g.LastUpdated, v.LastUpdated)
	}

	other, err := db.FindVenuesByInternalIDs(ctx, []string{ids[1]})
	if err != nil {
		t.Fatalf("FindVenuesByInternalIDs() error = %v", err)
	}
	if other[0].EventRefs == nil || len(other[0].EventRefs) != 0 {
		t.Errorf("EventRefs = %#v, want empty slice", other[0].EventRefs)
	}
	if !other[0].LastUpdated.IsZero() {
		t.Errorf("LastUpdated = %v, want zero", other[0].LastUpdated)
	}
}

func TestBulkUpsertVenues_ResolvesByNaturalKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.BulkUpsertVenues(ctx, []models.Venue{testVenue(7)})
	if err != nil {
		t.Fatalf("BulkUpsertVenues() error = %v", err)
	}

	renamed := testVenue(7)
	renamed.NameForeign = "Renamed Hall"
	second, err := db.BulkUpsertVenues(ctx, []models.Venue{renamed})
	if err != nil {
		t.Fatalf("BulkUpsertVenues() error = %v", err)
	}
	if second[0] != first[0] {
		t.Errorf("replayed venue id = %s, want %s", second[0], first[0])
	}

	venues, err := db.ListVenues(ctx)
	if err != nil {
		t.Fatalf("ListVenues() error = %v", err)
	}
	if len(venues) != 1 || venues[0].NameForeign != "Renamed Hall" {
		t.Errorf("venues = %+v, want one renamed venue", venues)
	}
}

func TestBulkUpsertVenues_SpansTransactions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	venues := make([]models.Venue, batchSize+10)
	for i := range venues {
		venues[i] = testVenue(int64(i + 1))
	}
	ids, err := db.BulkUpsertVenues(ctx, venues)
	if err != nil {
		t.Fatalf("BulkUpsertVenues() error = %v", err)
	}
	if len(ids) != len(venues) {
		t.Fatalf("got %d ids, want %d", len(ids), len(venues))
	}

	// IN lists are chunked too
	found, err := db.FindVenuesByInternalIDs(ctx, ids)
	if err != nil {
		t.Fatalf("FindVenuesByInternalIDs() error = %v", err)
	}
	if len(found) != len(ids) {
		t.Fatalf("found %d venues, want %d", len(found), len(ids))
	}
	for i := range found {
		if found[i].ID != ids[i] {
			t.Fatalf("found[%d] = %s, want input order %s", i, found[i].ID, ids[i])
		}
	}
}

func TestFindVenuesByInternalIDs_InputOrder(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ids, err := db.BulkUpsertVenues(ctx, []models.Venue{testVenue(1), testVenue(2), testVenue(3)})
	if err != nil {
		t.Fatalf("BulkUpsertVenues() error = %v", err)
	}

	got, err := db.FindVenuesByInternalIDs(ctx, []string{ids[2], "missing", ids[0]})
	if err != nil {
		t.Fatalf("FindVenuesByInternalIDs() error = %v", err)
	}
	if len(got) != 2 || got[0].VenueID != 3 || got[1].VenueID != 1 {
		t.Errorf("got %+v, want venues 3 then 1", got)
	}
}

func TestDeleteVenues(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ids, err := db.BulkUpsertVenues(ctx, []models.Venue{testVenue(1), testVenue(2)})
	if err != nil {
		t.Fatalf("BulkUpsertVenues() error = %v", err)
	}

	n, err := db.DeleteVenues(ctx, []string{ids[0], "unknown"})
	if err != nil {
		t.Fatalf("DeleteVenues() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteVenues() = %d, want 1", n)
	}
	if count, _ := db.CountVenues(ctx); count != 1 {
		t.Errorf("CountVenues() = %d, want 1", count)
	}

	n, err = db.DeleteVenues(ctx, nil)
	if err != nil || n != 0 {
		t.Errorf("DeleteVenues(nil) = %d, %v", n, err)
	}
}

func TestEvents_UpsertFindDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	venueIDs, err := db.BulkUpsertVenues(ctx, []models.Venue{testVenue(1), testVenue(2)})
	if err != nil {
		t.Fatalf("BulkUpsertVenues() error = %v", err)
	}

	events := []models.Event{
		testEvent(12, venueIDs[0]),
		testEvent(11, venueIDs[0]),
		testEvent(21, venueIDs[1]),
	}
	events[0].WhenScheduled = time.Date(2026, 6, 1, 19, 30, 0, 0, time.FixedZone("HKT", 8*3600))
	ids, err := db.BulkUpsertEvents(ctx, events)
	if err != nil {
		t.Fatalf("BulkUpsertEvents() error = %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("got %d ids, want 3", len(ids))
	}

	found, err := db.FindEventsByVenueRefs(ctx, []string{venueIDs[0]})
	if err != nil {
		t.Fatalf("FindEventsByVenueRefs() error = %v", err)
	}
	if len(found) != 2 || found[0].EventID != 11 || found[1].EventID != 12 {
		t.Fatalf("found %+v, want events 11 and 12", found)
	}
	if !found[1].WhenScheduled.Equal(events[0].WhenScheduled) {
		t.Errorf("WhenScheduled = %v, want %v", found[1].WhenScheduled, events[0].WhenScheduled)
	}

	// Moving an event to another venue drops it from the old venue's list.
	moved := found[1]
	moved.VenueRef = venueIDs[1]
	if _, err := db.BulkUpsertEvents(ctx, []models.Event{moved}); err != nil {
		t.Fatalf("BulkUpsertEvents() error = %v", err)
	}
	found, err = db.FindEventsByVenueRefs(ctx, []string{venueIDs[1]})
	if err != nil {
		t.Fatalf("FindEventsByVenueRefs() error = %v", err)
	}
	if len(found) != 2 {
		t.Errorf("venue 2 has %d events, want 2", len(found))
	}

	n, err := db.DeleteEvents(ctx, []string{ids[0], ids[2], "unknown"})
	if err != nil {
		t.Fatalf("DeleteEvents() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteEvents() = %d, want 2", n)
	}
	if count, _ := db.CountEvents(ctx); count != 1 {
		t.Errorf("CountEvents() = %d, want 1", count)
	}
}

func TestBulkUpsertEvents_ReplayDoesNotDuplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	venueIDs, err := db.BulkUpsertVenues(ctx, []models.Venue{testVenue(1)})
	if err != nil {
		t.Fatalf("BulkUpsertVenues() error = %v", err)
	}
	batch := []models.Event{testEvent(1, venueIDs[0]), testEvent(2, venueIDs[0])}

	first, err := db.BulkUpsertEvents(ctx, batch)
	if err != nil {
		t.Fatalf("BulkUpsertEvents() error = %v", err)
	}
	second, err := db.BulkUpsertEvents(ctx, batch)
	if err != nil {
		t.Fatalf("replay error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("replay id[%d] = %s, want %s", i, second[i], first[i])
		}
	}
	if n, _ := db.CountEvents(ctx); n != 2 {
		t.Errorf("CountEvents() = %d, want 2", n)
	}
}

func TestBulkUpsertEvents_RejectsBatchAtomically(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	venueIDs, err := db.BulkUpsertVenues(ctx, []models.Venue{testVenue(1)})
	if err != nil {
		t.Fatalf("BulkUpsertVenues() error = %v", err)
	}

	_, err = db.BulkUpsertEvents(ctx, []models.Event{testEvent(1, venueIDs[0]), testEvent(2, "")})
	if err == nil {
		t.Fatal("expected error for event without venue reference")
	}
	if n, _ := db.CountEvents(ctx); n != 0 {
		t.Errorf("CountEvents() = %d, want 0 after rolled back batch", n)
	}
}

func TestClosedDatabase(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	ctx := context.Background()
	if _, err := db.CountVenues(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("CountVenues() error = %v, want ErrClosed", err)
	}
	if _, err := db.BulkUpsertEvents(ctx, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("BulkUpsertEvents() error = %v, want ErrClosed", err)
	}
	if err := db.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping() error = %v, want ErrClosed", err)
	}
}

func TestCanceledContext(t *testing.T) {
	db := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := db.ListVenues(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("ListVenues() error = %v, want context.Canceled", err)
	}
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestMaintain(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Maintain(context.Background()); err != nil {
		t.Errorf("Maintain() error = %v", err)
	}
	_ = db.Close()
	if err := db.Maintain(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Maintain() after Close = %v, want ErrClosed", err)
	}
}
