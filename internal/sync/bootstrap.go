// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/culturemap/internal/metrics"
	"github.com/tomtom215/culturemap/internal/models"
)

// BootstrapReport summarizes an InitializeIfEmpty pass.
type BootstrapReport struct {
	Skipped         bool             `json:"skipped"`
	VenuesFetched   int              `json:"venues_fetched"`
	VenuesPersisted int              `json:"venues_persisted"`
	VenuesRetained  int              `json:"venues_retained"`
	VenuesDiscarded int              `json:"venues_discarded"`
	EventsFetched   int              `json:"events_fetched"`
	EventsPersisted int              `json:"events_persisted"`
	EventsDiscarded int              `json:"events_discarded"`
	Skips           []ValidationSkip `json:"skips,omitempty"`
	StartedAt       time.Time        `json:"started_at"`
	FinishedAt      time.Time        `json:"finished_at"`
}

// InitializeIfEmpty populates an empty store from both feeds.
//
// It does nothing when any venue is already persisted. Fetch and parse
// failures abort before the first write. A persistence failure is returned
// as *SyncError after deleting whatever this pass wrote, so the store is
// empty again and the bootstrap can be retried.
func (e *Engine) InitializeIfEmpty(ctx context.Context) (*BootstrapReport, error) {
	logger := passLogger(ctx, metrics.ModeBootstrap)
	report := &BootstrapReport{StartedAt: e.now()}

	count, err := e.gw.CountVenues(ctx)
	if err != nil {
		return nil, &SyncError{Op: OpCountVenues, Err: err}
	}
	if count > 0 {
		logger.Info().Int("venues", count).Msg("Store already initialized, skipping bootstrap")
		report.Skipped = true
		report.FinishedAt = e.now()
		return report, nil
	}

	venueFeed, eventFeed, err := e.fetchBoth(ctx)
	if err != nil {
		return nil, err
	}
	report.VenuesFetched = len(venueFeed.Venues)
	report.EventsFetched = len(eventFeed.Events)
	logger.Info().
		Int("venues", report.VenuesFetched).
		Int("events", report.EventsFetched).
		Msg("Fetched feeds")

	opts := e.normalizeOptions()
	p := &bootstrapPass{engine: e}

	// Stage one: venues.
	venues, venueSkips := NormalizeVenues(venueFeed.Venues, opts)
	report.Skips = append(report.Skips, venueSkips...)

	ids, err := e.gw.BulkUpsertVenues(ctx, venues)
	if err != nil {
		return nil, p.fail(ctx, &SyncError{Op: OpUpsertVenues, Records: len(venues), Err: err})
	}
	if len(ids) != len(venues) {
		return nil, p.fail(ctx, &SyncError{Op: OpUpsertVenues, Records: len(venues),
			Err: fmt.Errorf("gateway returned %d ids for %d venues", len(ids), len(venues))})
	}
	for i := range venues {
		venues[i].ID = ids[i]
	}
	p.venueIDs = ids
	report.VenuesPersisted = len(venues)

	// Stage two: events against committed venues only. The index is read
	// back from the gateway rather than built from the candidates.
	committed, err := e.gw.FindVenuesByInternalIDs(ctx, ids)
	if err != nil {
		return nil, p.fail(ctx, &SyncError{Op: OpFindVenuesByIDs, Records: len(ids), Err: err})
	}
	index := NewVenueIndex(committed)
	events, eventSkips := NormalizeEvents(eventFeed.Events, index, opts)
	report.Skips = append(report.Skips, eventSkips...)
	recordSkips(&logger, report.Skips)

	eventIDs, err := e.gw.BulkUpsertEvents(ctx, events)
	if err != nil {
		return nil, p.fail(ctx, &SyncError{Op: OpUpsertEvents, Records: len(events), Err: err})
	}
	if len(eventIDs) != len(events) {
		return nil, p.fail(ctx, &SyncError{Op: OpUpsertEvents, Records: len(events),
			Err: fmt.Errorf("gateway returned %d ids for %d events", len(eventIDs), len(events))})
	}
	for i := range events {
		events[i].ID = eventIDs[i]
	}
	p.eventIDs = eventIDs
	report.EventsPersisted = len(events)

	applyEventRefs(venues, events, e.now())
	if _, err := e.gw.BulkUpsertVenues(ctx, venues); err != nil {
		return nil, p.fail(ctx, &SyncError{Op: OpUpsertVenues, Records: len(venues), Err: err})
	}

	// Retention.
	kept, discarded := selectRetained(venues, e.opts.RetentionLimit)
	if len(discarded) > 0 {
		var doomedEvents []string
		for i := range discarded {
			doomedEvents = append(doomedEvents, discarded[i].EventRefs...)
		}
		if len(doomedEvents) > 0 {
			if _, err := e.gw.DeleteEvents(ctx, doomedEvents); err != nil {
				return nil, p.fail(ctx, &SyncError{Op: OpDeleteEvents, Records: len(doomedEvents), Err: err})
			}
		}
		if _, err := e.gw.DeleteVenues(ctx, venueIDsOf(discarded)); err != nil {
			return nil, p.fail(ctx, &SyncError{Op: OpDeleteVenues, Records: len(discarded), Err: err})
		}
		report.EventsDiscarded = len(doomedEvents)
	}
	report.VenuesRetained = len(kept)
	report.VenuesDiscarded = len(discarded)
	report.FinishedAt = e.now()

	metrics.SetVenuesRetained(report.VenuesRetained)
	logger.Info().
		Int("venues_persisted", report.VenuesPersisted).
		Int("venues_retained", report.VenuesRetained).
		Int("venues_discarded", report.VenuesDiscarded).
		Int("events_persisted", report.EventsPersisted).
		Int("events_discarded", report.EventsDiscarded).
		Int("skipped", len(report.Skips)).
		Msg("Bootstrap complete")

	return report, nil
}

// fetchBoth downloads the venue and event feeds concurrently.
func (e *Engine) fetchBoth(ctx context.Context) (*models.VenueFeed, *models.EventFeed, error) {
	var (
		wg        sync.WaitGroup
		venueFeed *models.VenueFeed
		eventFeed *models.EventFeed
		venueErr  error
		eventErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		venueFeed, venueErr = e.feeds.FetchVenues(ctx)
	}()
	go func() {
		defer wg.Done()
		eventFeed, eventErr = e.feeds.FetchEvents(ctx)
	}()
	wg.Wait()

	if venueErr != nil {
		return nil, nil, fmt.Errorf("fetch venues: %w", venueErr)
	}
	if eventErr != nil {
		return nil, nil, fmt.Errorf("fetch events: %w", eventErr)
	}
	if venueFeed == nil {
		venueFeed = &models.VenueFeed{}
	}
	if eventFeed == nil {
		eventFeed = &models.EventFeed{}
	}
	return venueFeed, eventFeed, nil
}

// bootstrapPass tracks what a bootstrap has written so it can be undone.
type bootstrapPass struct {
	engine   *Engine
	venueIDs []string
	eventIDs []string
}

// fail rolls back the pass on a best-effort basis and returns cause.
//
// The store was empty when the pass started, so rollback removes every
// venue it can see plus the IDs this pass recorded, which also covers a
// partially applied batch. It runs on a context detached from
// cancellation so a cancelled request still cleans up.
func (p *bootstrapPass) fail(ctx context.Context, cause *SyncError) error {
	logger := passLogger(ctx, metrics.ModeBootstrap)
	rctx := context.WithoutCancel(ctx)
	gw := p.engine.gw

	venueIDs := p.venueIDs
	if listed, err := gw.ListVenues(rctx); err == nil {
		venueIDs = mergeIDs(venueIDs, venueIDsOf(listed))
	} else {
		logger.Warn().Err(err).Msg("Bootstrap rollback could not list venues")
	}

	eventIDs := p.eventIDs
	if len(venueIDs) > 0 {
		if found, err := gw.FindEventsByVenueRefs(rctx, venueIDs); err == nil {
			eventIDs = mergeIDs(eventIDs, eventIDsOf(found))
		} else {
			logger.Warn().Err(err).Msg("Bootstrap rollback could not list events")
		}
	}

	if len(eventIDs) > 0 {
		if _, err := gw.DeleteEvents(rctx, eventIDs); err != nil {
			logger.Error().Err(err).Int("events", len(eventIDs)).Msg("Bootstrap rollback failed to delete events")
		}
	}
	if len(venueIDs) > 0 {
		if _, err := gw.DeleteVenues(rctx, venueIDs); err != nil {
			logger.Error().Err(err).Int("venues", len(venueIDs)).Msg("Bootstrap rollback failed to delete venues")
		}
	}
	logger.Error().Err(cause).
		Int("venues_removed", len(venueIDs)).
		Int("events_removed", len(eventIDs)).
		Msg("Bootstrap failed, rolled back")
	return cause
}

// mergeIDs returns the union of a and b, preserving first-seen order.
func mergeIDs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
