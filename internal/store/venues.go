// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/culturemap/internal/models"
)

// Operation names, matching the sync package's SyncError ops.
const (
	opCountVenues     = "count_venues"
	opListVenues      = "list_venues"
	opUpsertVenues    = "bulk_upsert_venues"
	opFindVenuesByIDs = "find_venues_by_internal_ids"
	opDeleteVenues    = "delete_venues"
	opFindEvents      = "find_events_by_venue_refs"
	opUpsertEvents    = "bulk_upsert_events"
	opDeleteEvents    = "delete_events"
)

func venueKey(id string) []byte { return []byte(venueKeyPrefix + id) }

func venueExtKey(venueID int64) []byte {
	return []byte(venueExtKeyPrefix + strconv.FormatInt(venueID, 10))
}

// getVenue loads a venue document, returning ErrNotFound when absent.
func getVenue(txn *badger.Txn, id string) (*models.Venue, error) {
	item, err := txn.Get(venueKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get venue %s: %w", id, err)
	}
	var v models.Venue
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &v)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal venue %s: %w", id, err)
	}
	return &v, nil
}

// CountVenues returns the number of persisted venues.
func (s *BadgerStore) CountVenues(ctx context.Context) (n int, err error) {
	defer func(start time.Time) { s.observe(opCountVenues, start, err) }(time.Now())
	if err = s.check(ctx); err != nil {
		return 0, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		return scanKeys(txn, []byte(venueKeyPrefix), func([]byte) error {
			n++
			return nil
		})
	})
	return n, err
}

// ListVenues returns every persisted venue.
func (s *BadgerStore) ListVenues(ctx context.Context) (venues []models.Venue, err error) {
	defer func(start time.Time) { s.observe(opListVenues, start, err) }(time.Now())
	if err = s.check(ctx); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(venueKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var v models.Venue
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return fmt.Errorf("unmarshal venue: %w", err)
			}
			venues = append(venues, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return venues, nil
}

// BulkUpsertVenues inserts or replaces venues and returns their internal IDs
// in input order. A venue without an ID takes the ID of the stored venue
// with the same VenueID, or a new UUID.
func (s *BadgerStore) BulkUpsertVenues(ctx context.Context, venues []models.Venue) (ids []string, err error) {
	defer func(start time.Time) { s.observe(opUpsertVenues, start, err) }(time.Now())
	if err = s.check(ctx); err != nil {
		return nil, err
	}

	ids = make([]string, 0, len(venues))
	for _, c := range chunks(len(venues)) {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			for i := c[0]; i < c[1]; i++ {
				id, err := upsertVenue(txn, venues[i])
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("upsert venues: %w", err)
		}
	}
	return ids, nil
}

func upsertVenue(txn *badger.Txn, v models.Venue) (string, error) {
	extKey := venueExtKey(v.VenueID)
	if v.ID == "" {
		existing, err := getIndex(txn, extKey)
		if err != nil {
			return "", fmt.Errorf("resolve venue %d: %w", v.VenueID, err)
		}
		v.ID = existing
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}

	// Drop the old external key if this document changes its VenueID.
	old, err := getVenue(txn, v.ID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return "", err
	case old.VenueID != v.VenueID:
		if err := deleteKey(txn, venueExtKey(old.VenueID)); err != nil {
			return "", err
		}
	}

	if v.EventRefs == nil {
		v.EventRefs = []string{}
	}
	data, err := json.Marshal(&v)
	if err != nil {
		return "", fmt.Errorf("marshal venue: %w", err)
	}
	if err := txn.Set(venueKey(v.ID), data); err != nil {
		return "", fmt.Errorf("set venue: %w", err)
	}
	if err := txn.Set(extKey, []byte(v.ID)); err != nil {
		return "", fmt.Errorf("set venue index: %w", err)
	}
	return v.ID, nil
}

// FindVenuesByInternalIDs returns the venues with the given IDs, in input
// order. Unknown IDs are ignored.
func (s *BadgerStore) FindVenuesByInternalIDs(ctx context.Context, ids []string) (venues []models.Venue, err error) {
	defer func(start time.Time) { s.observe(opFindVenuesByIDs, start, err) }(time.Now())
	if err = s.check(ctx); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			v, err := getVenue(txn, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			venues = append(venues, *v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find venues: %w", err)
	}
	return venues, nil
}

// DeleteVenues removes venues by internal ID and returns how many existed.
// Events are not touched; callers delete a venue's events first.
func (s *BadgerStore) DeleteVenues(ctx context.Context, ids []string) (deleted int, err error) {
	defer func(start time.Time) { s.observe(opDeleteVenues, start, err) }(time.Now())
	if err = s.check(ctx); err != nil {
		return 0, err
	}

	for _, c := range chunks(len(ids)) {
		if err = ctx.Err(); err != nil {
			return deleted, err
		}
		n := 0
		err = s.db.Update(func(txn *badger.Txn) error {
			n = 0
			for _, id := range ids[c[0]:c[1]] {
				v, err := getVenue(txn, id)
				if errors.Is(err, ErrNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				if err := deleteKey(txn, venueKey(id)); err != nil {
					return fmt.Errorf("delete venue: %w", err)
				}
				if err := deleteKey(txn, venueExtKey(v.VenueID)); err != nil {
					return fmt.Errorf("delete venue index: %w", err)
				}
				n++
			}
			return nil
		})
		if err != nil {
			return deleted, fmt.Errorf("delete venues: %w", err)
		}
		deleted += n
	}
	return deleted, nil
}
