// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/culturemap/internal/models"
)

const eventColumns = `id, event_id, title_local, title_foreign, venue_ref,
	when_scheduled, description, presenter`

// FindEventsByVenueRefs returns every event whose VenueRef is in venueRefs,
// ordered by venue reference then external event ID.
func (db *DB) FindEventsByVenueRefs(ctx context.Context, venueRefs []string) (events []models.Event, err error) {
	defer func(start time.Time) { observe(opFindEvents, start, err) }(time.Now())
	if err = db.check(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	for _, c := range chunks(len(venueRefs)) {
		batch := venueRefs[c[0]:c[1]]
		query := `SELECT ` + eventColumns + ` FROM events
			WHERE venue_ref IN (` + placeholders(len(batch)) + `)
			ORDER BY venue_ref, event_id`
		found, err := db.queryEvents(ctx, query, stringArgs(batch))
		if err != nil {
			return nil, err
		}
		events = append(events, found...)
	}
	return events, nil
}

func (db *DB) queryEvents(ctx context.Context, query string, args []any) ([]models.Event, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.EventID, &e.TitleLocal, &e.TitleForeign, &e.VenueRef,
			&e.WhenScheduled, &e.Description, &e.Presenter); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.WhenScheduled = e.WhenScheduled.UTC()
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// BulkUpsertEvents inserts or replaces events and returns their internal IDs
// in input order. An event without an ID takes the ID of the stored event
// with the same EventID, or a new UUID.
func (db *DB) BulkUpsertEvents(ctx context.Context, events []models.Event) (ids []string, err error) {
	defer func(start time.Time) { observe(opUpsertEvents, start, err) }(time.Now())
	if err = db.check(ctx); err != nil {
		return nil, err
	}

	ids = make([]string, 0, len(events))
	for _, c := range chunks(len(events)) {
		err = db.withTx(ctx, func(tx *sql.Tx) error {
			for i := c[0]; i < c[1]; i++ {
				id, err := upsertEvent(ctx, tx, events[i])
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upsert events: %w", err)
		}
	}
	return ids, nil
}

func upsertEvent(ctx context.Context, tx *sql.Tx, e models.Event) (string, error) {
	if e.VenueRef == "" {
		return "", fmt.Errorf("event %d has no venue reference", e.EventID)
	}

	if e.ID == "" {
		err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE event_id = ? LIMIT 1`, e.EventID).Scan(&e.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("failed to resolve event %d: %w", e.EventID, err)
		}
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE id = ?`, e.ID).Scan(&exists); err != nil {
		return "", fmt.Errorf("failed to check event %s: %w", e.ID, err)
	}

	var err error
	if exists > 0 {
		_, err = tx.ExecContext(ctx, `UPDATE events SET
			event_id = ?, title_local = ?, title_foreign = ?, venue_ref = ?,
			when_scheduled = ?, description = ?, presenter = ?
			WHERE id = ?`,
			e.EventID, e.TitleLocal, e.TitleForeign, e.VenueRef,
			e.WhenScheduled.UTC(), e.Description, e.Presenter, e.ID)
	} else {
		_, err = tx.ExecContext(ctx, `INSERT INTO events (`+eventColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.EventID, e.TitleLocal, e.TitleForeign, e.VenueRef,
			e.WhenScheduled.UTC(), e.Description, e.Presenter)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write event %d: %w", e.EventID, err)
	}
	return e.ID, nil
}

// DeleteEvents removes events by internal ID and returns how many existed.
func (db *DB) DeleteEvents(ctx context.Context, ids []string) (deleted int, err error) {
	defer func(start time.Time) { observe(opDeleteEvents, start, err) }(time.Now())
	if err = db.check(ctx); err != nil {
		return 0, err
	}
	return db.deleteByID(ctx, "events", ids)
}

// CountEvents returns the number of persisted events.
func (db *DB) CountEvents(ctx context.Context) (n int, err error) {
	defer func(start time.Time) { observe(opCountEvents, start, err) }(time.Now())
	if err = db.check(ctx); err != nil {
		return 0, err
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return n, nil
}
