// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/culturemap/internal/metrics"
	"github.com/tomtom215/culturemap/internal/models"
)

// RefreshReport summarizes a RefreshEvents pass.
type RefreshReport struct {
	Inserted       int              `json:"inserted"`
	Updated        int              `json:"updated"`
	Deleted        int              `json:"deleted"`
	Unchanged      int              `json:"unchanged"`
	TotalRemaining int              `json:"total_remaining"`
	Skips          []ValidationSkip `json:"skips,omitempty"`
	StartedAt      time.Time        `json:"started_at"`
	FinishedAt     time.Time        `json:"finished_at"`
}

// RefreshEvents reconciles stored events with the event feed.
//
// Venues are never added or removed here; events are matched to the venues
// already persisted. A fetch or parse failure aborts before any write.
// Deletes are applied first, then inserts, then updates, and finally every
// venue's references and LastUpdated are recomputed.
func (e *Engine) RefreshEvents(ctx context.Context) (*RefreshReport, error) {
	logger := passLogger(ctx, metrics.ModeRefresh)
	report := &RefreshReport{StartedAt: e.now()}

	count, err := e.gw.CountVenues(ctx)
	if err != nil {
		return nil, &SyncError{Op: OpCountVenues, Err: err}
	}
	if count == 0 {
		return nil, &NotInitializedError{}
	}

	venues, err := e.gw.ListVenues(ctx)
	if err != nil {
		return nil, &SyncError{Op: OpListVenues, Err: err}
	}
	index := NewVenueIndex(venues)

	eventFeed, err := e.feeds.FetchEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	if eventFeed == nil {
		eventFeed = &models.EventFeed{}
	}

	venueIDs := index.InternalIDs()
	existing, err := e.gw.FindEventsByVenueRefs(ctx, venueIDs)
	if err != nil {
		return nil, &SyncError{Op: OpFindEvents, Records: len(venueIDs), Err: err}
	}

	fetched, skips := NormalizeEvents(eventFeed.Events, index, e.normalizeOptions())
	report.Skips = skips
	recordSkips(&logger, skips)

	diff := diffEvents(existing, fetched)
	logger.Debug().
		Int("existing", len(existing)).
		Int("fetched", len(fetched)).
		Int("new", len(diff.inserted)).
		Int("changed", len(diff.changed)).
		Int("removed", len(diff.removed)).
		Msg("Computed event diff")

	if len(diff.removed) > 0 {
		n, err := e.gw.DeleteEvents(ctx, diff.removed)
		if err != nil {
			return nil, &SyncError{Op: OpDeleteEvents, Records: len(diff.removed), Err: err}
		}
		report.Deleted = n
	}

	if len(diff.inserted) > 0 {
		ids, err := e.gw.BulkUpsertEvents(ctx, diff.inserted)
		if err != nil {
			return nil, &SyncError{Op: OpUpsertEvents, Records: len(diff.inserted), Err: err}
		}
		if len(ids) != len(diff.inserted) {
			return nil, &SyncError{Op: OpUpsertEvents, Records: len(diff.inserted),
				Err: fmt.Errorf("gateway returned %d ids for %d events", len(ids), len(diff.inserted))}
		}
		for i := range diff.inserted {
			diff.inserted[i].ID = ids[i]
		}
		report.Inserted = len(diff.inserted)
	}

	if len(diff.changed) > 0 {
		if _, err := e.gw.BulkUpsertEvents(ctx, diff.changed); err != nil {
			return nil, &SyncError{Op: OpUpsertEvents, Records: len(diff.changed), Err: err}
		}
		report.Updated = len(diff.changed)
	}
	report.Unchanged = len(diff.unchanged)

	remaining := make([]models.Event, 0, len(diff.unchanged)+len(diff.changed)+len(diff.inserted))
	remaining = append(remaining, diff.unchanged...)
	remaining = append(remaining, diff.changed...)
	remaining = append(remaining, diff.inserted...)

	applyEventRefs(venues, remaining, e.now())
	if _, err := e.gw.BulkUpsertVenues(ctx, venues); err != nil {
		return nil, &SyncError{Op: OpUpsertVenues, Records: len(venues), Err: err}
	}

	report.TotalRemaining = len(remaining)
	report.FinishedAt = e.now()

	metrics.RecordEventChanges(report.Inserted, report.Updated, report.Deleted, report.Unchanged)
	logger.Info().
		Int("inserted", report.Inserted).
		Int("updated", report.Updated).
		Int("deleted", report.Deleted).
		Int("unchanged", report.Unchanged).
		Int("total_remaining", report.TotalRemaining).
		Int("skipped", len(report.Skips)).
		Msg("Event refresh complete")

	return report, nil
}
