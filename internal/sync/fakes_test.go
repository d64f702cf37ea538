// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/culturemap/internal/feed"
	"github.com/tomtom215/culturemap/internal/models"
	"github.com/tomtom215/culturemap/internal/store"
)

var errInjected = errors.New("injected failure")

// fakeFeeds serves fixed feed documents and counts calls.
type fakeFeeds struct {
	mu         sync.Mutex
	venues     []models.RawVenue
	events     []models.RawEvent
	venueErr   error
	eventErr   error
	eventFails int // remaining FetchEvents failures; negative fails forever
	venueCalls int
	eventCalls int
}

func (f *fakeFeeds) FetchVenues(ctx context.Context) (*models.VenueFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.venueCalls++
	if f.venueErr != nil {
		return nil, f.venueErr
	}
	return &models.VenueFeed{Venues: append([]models.RawVenue(nil), f.venues...)}, nil
}

func (f *fakeFeeds) FetchEvents(ctx context.Context) (*models.EventFeed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventCalls++
	if f.eventErr != nil && f.eventFails != 0 {
		if f.eventFails > 0 {
			f.eventFails--
		}
		return nil, f.eventErr
	}
	return &models.EventFeed{Events: append([]models.RawEvent(nil), f.events...)}, nil
}

// failEvents makes the next n FetchEvents calls return err; n < 0 fails forever.
func (f *fakeFeeds) failEvents(err error, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventErr, f.eventFails = err, n
}

func (f *fakeFeeds) setEvents(events []models.RawEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = events
}

func (f *fakeFeeds) calls() (venues, events int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.venueCalls, f.eventCalls
}

// countingGateway wraps a Gateway, counting write calls and failing the
// configured operation on its n-th invocation (1-based).
type countingGateway struct {
	Gateway
	mu     sync.Mutex
	writes int
	calls  map[string]int
	failOp string
	failAt int
}

func newCountingGateway(inner Gateway) *countingGateway {
	return &countingGateway{Gateway: inner, calls: make(map[string]int)}
}

func (g *countingGateway) failOn(op string, nth int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failOp, g.failAt = op, nth
}

func (g *countingGateway) record(op string, write bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[op]++
	if write {
		g.writes++
	}
	if op == g.failOp && g.calls[op] == g.failAt {
		return errInjected
	}
	return nil
}

func (g *countingGateway) writeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.writes
}

func (g *countingGateway) resetCounts() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.writes = 0
	g.calls = make(map[string]int)
}

func (g *countingGateway) BulkUpsertVenues(ctx context.Context, v []models.Venue) ([]string, error) {
	if err := g.record(OpUpsertVenues, true); err != nil {
		return nil, err
	}
	return g.Gateway.BulkUpsertVenues(ctx, v)
}

func (g *countingGateway) DeleteVenues(ctx context.Context, ids []string) (int, error) {
	if err := g.record(OpDeleteVenues, true); err != nil {
		return 0, err
	}
	return g.Gateway.DeleteVenues(ctx, ids)
}

func (g *countingGateway) BulkUpsertEvents(ctx context.Context, e []models.Event) ([]string, error) {
	if err := g.record(OpUpsertEvents, true); err != nil {
		return nil, err
	}
	return g.Gateway.BulkUpsertEvents(ctx, e)
}

func (g *countingGateway) DeleteEvents(ctx context.Context, ids []string) (int, error) {
	if err := g.record(OpDeleteEvents, true); err != nil {
		return 0, err
	}
	return g.Gateway.DeleteEvents(ctx, ids)
}

func (g *countingGateway) FindVenuesByInternalIDs(ctx context.Context, ids []string) ([]models.Venue, error) {
	if err := g.record(OpFindVenuesByIDs, false); err != nil {
		return nil, err
	}
	return g.Gateway.FindVenuesByInternalIDs(ctx, ids)
}

func (g *countingGateway) FindEventsByVenueRefs(ctx context.Context, refs []string) ([]models.Event, error) {
	if err := g.record(OpFindEvents, false); err != nil {
		return nil, err
	}
	return g.Gateway.FindEventsByVenueRefs(ctx, refs)
}

// newMemoryGateway returns an in-memory Badger store closed at test end.
func newMemoryGateway(t *testing.T) *store.BadgerStore {
	t.Helper()
	s, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var hongKong = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Hong_Kong")
	if err != nil {
		return time.FixedZone("HKT", 8*3600)
	}
	return loc
}()

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(feeds FeedSource, gw Gateway, retention int) *Engine {
	return NewEngine(feeds, gw, EngineOptions{
		RetentionLimit: retention,
		Location:       hongKong,
		Now:            func() time.Time { return fixedNow },
	})
}

func rawVenue(id int64) models.RawVenue {
	return models.RawVenue{
		ID:          fmt.Sprint(id),
		NameLocal:   fmt.Sprintf("場地%d", id),
		NameForeign: fmt.Sprintf("Venue %d", id),
		Latitude:    "22.3",
		Longitude:   "114.17",
	}
}

func rawEvent(id, venueID int64) models.RawEvent {
	return models.RawEvent{
		ID:           fmt.Sprint(id),
		TitleLocal:   fmt.Sprintf("節目%d", id),
		TitleForeign: fmt.Sprintf("Event %d", id),
		VenueID:      fmt.Sprint(venueID),
		Date:         "2026-06-01T19:30:00",
		Description:  "An evening performance",
		Presenter:    "LCSD",
	}
}

// rawEvents builds n events for venueID with IDs starting at first.
func rawEvents(first int64, n int, venueID int64) []models.RawEvent {
	out := make([]models.RawEvent, n)
	for i := range out {
		out[i] = rawEvent(first+int64(i), venueID)
	}
	return out
}

// snapshot loads every venue and event from gw.
func snapshot(t *testing.T, gw Gateway) ([]models.Venue, []models.Event) {
	t.Helper()
	ctx := context.Background()
	venues, err := gw.ListVenues(ctx)
	if err != nil {
		t.Fatalf("ListVenues() error = %v", err)
	}
	events, err := gw.FindEventsByVenueRefs(ctx, venueIDsOf(venues))
	if err != nil {
		t.Fatalf("FindEventsByVenueRefs() error = %v", err)
	}
	return venues, events
}

// checkIntegrity asserts the store invariants: counts match refs, refs
// point at events of that venue, and every event's venue exists.
func checkIntegrity(t *testing.T, gw Gateway) {
	t.Helper()
	venues, events := snapshot(t, gw)

	venueByID := make(map[string]models.Venue, len(venues))
	for _, v := range venues {
		venueByID[v.ID] = v
	}
	eventByID := make(map[string]models.Event, len(events))
	for _, e := range events {
		eventByID[e.ID] = e
		if _, ok := venueByID[e.VenueRef]; !ok {
			t.Errorf("event %d references missing venue %s", e.EventID, e.VenueRef)
		}
	}

	refCount := 0
	for _, v := range venues {
		if v.EventCount != len(v.EventRefs) {
			t.Errorf("venue %d EventCount = %d, len(EventRefs) = %d", v.VenueID, v.EventCount, len(v.EventRefs))
		}
		var prev int64 = -1
		for _, ref := range v.EventRefs {
			e, ok := eventByID[ref]
			if !ok {
				t.Errorf("venue %d references missing event %s", v.VenueID, ref)
				continue
			}
			if e.VenueRef != v.ID {
				t.Errorf("venue %d lists event %d of venue %s", v.VenueID, e.EventID, e.VenueRef)
			}
			if e.EventID <= prev {
				t.Errorf("venue %d EventRefs not sorted by eventId", v.VenueID)
			}
			prev = e.EventID
		}
		refCount += len(v.EventRefs)
	}
	if refCount != len(events) {
		t.Errorf("venues reference %d events, store holds %d", refCount, len(events))
	}
}

func eventsByExternalID(events []models.Event) map[int64]models.Event {
	out := make(map[int64]models.Event, len(events))
	for _, e := range events {
		out[e.EventID] = e
	}
	return out
}

func fetchErr(feedName string) error {
	return &feed.FetchError{Feed: feedName, URL: "http://upstream.test/" + feedName, Err: errInjected}
}
