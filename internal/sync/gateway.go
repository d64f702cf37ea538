// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"context"

	"github.com/tomtom215/culturemap/internal/models"
)

// FeedSource provides the decoded upstream catalogues.
// Implemented by feed.Client and feed.CircuitBreakerClient.
type FeedSource interface {
	FetchVenues(ctx context.Context) (*models.VenueFeed, error)
	FetchEvents(ctx context.Context) (*models.EventFeed, error)
}

// Gateway is the persistence boundary of the reconciliation engine.
//
// All operations are bulk. Upserts return internal IDs in input order and
// resolve each record's ID as: the given ID if set, else the ID of an
// existing record with the same external key, else a new UUID. Re-applying
// the same batch therefore never duplicates an external key.
//
// Implemented by store.BadgerStore (disk or in-memory) and database.DB (DuckDB).
type Gateway interface {
	CountVenues(ctx context.Context) (int, error)
	ListVenues(ctx context.Context) ([]models.Venue, error)
	BulkUpsertVenues(ctx context.Context, venues []models.Venue) ([]string, error)
	FindVenuesByInternalIDs(ctx context.Context, ids []string) ([]models.Venue, error)
	DeleteVenues(ctx context.Context, ids []string) (int, error)

	FindEventsByVenueRefs(ctx context.Context, venueRefs []string) ([]models.Event, error)
	BulkUpsertEvents(ctx context.Context, events []models.Event) ([]string, error)
	DeleteEvents(ctx context.Context, ids []string) (int, error)

	Close() error
}

// VenueIndex maps external venue IDs to internal venue IDs. It is built only
// from venues that are already committed, and is the hand-off between the
// venue stage and the event stage of a pass.
type VenueIndex map[int64]string

// NewVenueIndex builds an index from persisted venues.
func NewVenueIndex(venues []models.Venue) VenueIndex {
	idx := make(VenueIndex, len(venues))
	for i := range venues {
		idx[venues[i].VenueID] = venues[i].ID
	}
	return idx
}

// InternalIDs returns the internal venue IDs held by the index.
func (idx VenueIndex) InternalIDs() []string {
	ids := make([]string, 0, len(idx))
	for _, id := range idx {
		ids = append(ids, id)
	}
	return ids
}
