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
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/culturemap/internal/models"
)

func eventKey(id string) []byte { return []byte(eventKeyPrefix + id) }

func eventExtKey(eventID int64) []byte {
	return []byte(eventExtKeyPrefix + strconv.FormatInt(eventID, 10))
}

func eventVenueKey(venueRef, id string) []byte {
	return []byte(eventVenueKeyPrefix + venueRef + ":" + id)
}

func eventVenuePrefix(venueRef string) []byte {
	return []byte(eventVenueKeyPrefix + venueRef + ":")
}

// getEvent loads an event document, returning ErrNotFound when absent.
func getEvent(txn *badger.Txn, id string) (*models.Event, error) {
	item, err := txn.Get(eventKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	var e models.Event
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &e)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal event %s: %w", id, err)
	}
	return &e, nil
}

// FindEventsByVenueRefs returns every event whose VenueRef is in venueRefs.
func (s *BadgerStore) FindEventsByVenueRefs(ctx context.Context, venueRefs []string) (events []models.Event, err error) {
	defer func(start time.Time) { s.observe(opFindEvents, start, err) }(time.Now())
	if err = s.check(ctx); err != nil {
		return nil, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		for _, ref := range venueRefs {
			prefix := eventVenuePrefix(ref)
			var ids []string
			if err := scanKeys(txn, prefix, func(key []byte) error {
				ids = append(ids, strings.TrimPrefix(string(key), string(prefix)))
				return nil
			}); err != nil {
				return err
			}
			for _, id := range ids {
				e, err := getEvent(txn, id)
				if errors.Is(err, ErrNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				events = append(events, *e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	return events, nil
}

// BulkUpsertEvents inserts or replaces events and returns their internal IDs
// in input order. An event without an ID takes the ID of the stored event
// with the same EventID, or a new UUID.
func (s *BadgerStore) BulkUpsertEvents(ctx context.Context, events []models.Event) (ids []string, err error) {
	defer func(start time.Time) { s.observe(opUpsertEvents, start, err) }(time.Now())
	if err = s.check(ctx); err != nil {
		return nil, err
	}

	ids = make([]string, 0, len(events))
	for _, c := range chunks(len(events)) {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		err = s.db.Update(func(txn *badger.Txn) error {
			for i := c[0]; i < c[1]; i++ {
				id, err := upsertEvent(txn, events[i])
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("upsert events: %w", err)
		}
	}
	return ids, nil
}

func upsertEvent(txn *badger.Txn, e models.Event) (string, error) {
	if e.VenueRef == "" {
		return "", fmt.Errorf("event %d has no venue reference", e.EventID)
	}

	extKey := eventExtKey(e.EventID)
	if e.ID == "" {
		existing, err := getIndex(txn, extKey)
		if err != nil {
			return "", fmt.Errorf("resolve event %d: %w", e.EventID, err)
		}
		e.ID = existing
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	old, err := getEvent(txn, e.ID)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return "", err
	default:
		if old.EventID != e.EventID {
			if err := deleteKey(txn, eventExtKey(old.EventID)); err != nil {
				return "", err
			}
		}
		if old.VenueRef != e.VenueRef {
			if err := deleteKey(txn, eventVenueKey(old.VenueRef, e.ID)); err != nil {
				return "", err
			}
		}
	}

	data, err := json.Marshal(&e)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	if err := txn.Set(eventKey(e.ID), data); err != nil {
		return "", fmt.Errorf("set event: %w", err)
	}
	if err := txn.Set(extKey, []byte(e.ID)); err != nil {
		return "", fmt.Errorf("set event index: %w", err)
	}
	if err := txn.Set(eventVenueKey(e.VenueRef, e.ID), nil); err != nil {
		return "", fmt.Errorf("set event venue index: %w", err)
	}
	return e.ID, nil
}

// DeleteEvents removes events by internal ID and returns how many existed.
func (s *BadgerStore) DeleteEvents(ctx context.Context, ids []string) (deleted int, err error) {
	defer func(start time.Time) { s.observe(opDeleteEvents, start, err) }(time.Now())
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
				e, err := getEvent(txn, id)
				if errors.Is(err, ErrNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				for _, key := range [][]byte{eventKey(id), eventExtKey(e.EventID), eventVenueKey(e.VenueRef, id)} {
					if err := deleteKey(txn, key); err != nil {
						return fmt.Errorf("delete event: %w", err)
					}
				}
				n++
			}
			return nil
		})
		if err != nil {
			return deleted, fmt.Errorf("delete events: %w", err)
		}
		deleted += n
	}
	return deleted, nil
}

// CountEvents returns the number of persisted events.
func (s *BadgerStore) CountEvents(ctx context.Context) (n int, err error) {
	if err = s.check(ctx); err != nil {
		return 0, err
	}
	err = s.db.View(func(txn *badger.Txn) error {
		return scanKeys(txn, []byte(eventKeyPrefix), func([]byte) error {
			n++
			return nil
		})
	})
	return n, err
}
