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

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/culturemap/internal/models"
)

// Operation names, shared with the badger store and sync.SyncError.
const (
	opCountVenues     = "count_venues"
	opListVenues      = "list_venues"
	opUpsertVenues    = "bulk_upsert_venues"
	opFindVenuesByIDs = "find_venues_by_internal_ids"
	opDeleteVenues    = "delete_venues"
	opFindEvents      = "find_events_by_venue_refs"
	opUpsertEvents    = "bulk_upsert_events"
	opDeleteEvents    = "delete_events"
	opCountEvents     = "count_events"
)

const venueColumns = `id, venue_id, name_local, name_foreign, latitude, longitude,
	distance_km, event_refs, event_count, last_updated`

// scanVenue reads one row selected with venueColumns.
func scanVenue(rows *sql.Rows) (models.Venue, error) {
	var (
		v           models.Venue
		refs        string
		lastUpdated sql.NullTime
	)
	if err := rows.Scan(&v.ID, &v.VenueID, &v.NameLocal, &v.NameForeign,
		&v.Latitude, &v.Longitude, &v.DistanceKm, &refs, &v.EventCount, &lastUpdated); err != nil {
		return v, fmt.Errorf("failed to scan venue: %w", err)
	}
	if err := json.Unmarshal([]byte(refs), &v.EventRefs); err != nil {
		return v, fmt.Errorf("failed to decode event refs of venue %s: %w", v.ID, err)
	}
	if v.EventRefs == nil {
		v.EventRefs = []string{}
	}
	if lastUpdated.Valid {
		v.LastUpdated = lastUpdated.Time.UTC()
	}
	return v, nil
}

// CountVenues returns the number of persisted venues.
func (db *DB) CountVenues(ctx context.Context) (n int, err error) {
	defer func(start time.Time) { observe(opCountVenues, start, err) }(time.Now())
	if err = db.check(ctx); err != nil {
		return 0, err
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	if err = db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count venues: %w", err)
	}
	return n, nil
}

// ListVenues returns every persisted venue ordered by external venue ID.
func (db *DB) ListVenues(ctx context.Context) (venues []models.Venue, err error) {
	defer func(start time.Time) { observe(opListVenues, start, err) }(time.Now())
	if err = db.check(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY venue_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating venues: %w", err)
	}
	return venues, nil
}

// BulkUpsertVenues inserts or replaces venues and returns their internal IDs
// in input order. A venue without an ID takes the ID of the stored venue
// with the same VenueID, or a new UUID.
func (db *DB) BulkUpsertVenues(ctx context.Context, venues []models.Venue) (ids []string, err error) {
	defer func(start time.Time) { observe(opUpsertVenues, start, err) }(time.Now())
	if err = db.check(ctx); err != nil {
		return nil, err
	}

	ids = make([]string, 0, len(venues))
	for _, c := range chunks(len(venues)) {
		err = db.withTx(ctx, func(tx *sql.Tx) error {
			for i := c[0]; i < c[1]; i++ {
				id, err := upsertVenue(ctx, tx, venues[i])
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upsert venues: %w", err)
		}
	}
	return ids, nil
}

func upsertVenue(ctx context.Context, tx *sql.Tx, v models.Venue) (string, error) {
	if v.ID == "" {
		err := tx.QueryRowContext(ctx, `SELECT id FROM venues WHERE venue_id = ? LIMIT 1`, v.VenueID).Scan(&v.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("failed to resolve venue %d: %w", v.VenueID, err)
		}
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
	}

	if v.EventRefs == nil {
		v.EventRefs = []string{}
	}
	refs, err := json.Marshal(v.EventRefs)
	if err != nil {
		return "", fmt.Errorf("failed to encode event refs: %w", err)
	}
	var lastUpdated any
	if !v.LastUpdated.IsZero() {
		lastUpdated = v.LastUpdated.UTC()
	}

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues WHERE id = ?`, v.ID).Scan(&exists); err != nil {
		return "", fmt.Errorf("failed to check venue %s: %w", v.ID, err)
	}

	if exists > 0 {
		_, err = tx.ExecContext(ctx, `UPDATE venues SET
			venue_id = ?, name_local = ?, name_foreign = ?, latitude = ?, longitude = ?,
			distance_km = ?, event_refs = ?, event_count = ?, last_updated = ?
			WHERE id = ?`,
			v.VenueID, v.NameLocal, v.NameForeign, v.Latitude, v.Longitude,
			v.DistanceKm, string(refs), v.EventCount, lastUpdated, v.ID)
	} else {
		_, err = tx.ExecContext(ctx, `INSERT INTO venues (`+venueColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, v.VenueID, v.NameLocal, v.NameForeign, v.Latitude, v.Longitude,
			v.DistanceKm, string(refs), v.EventCount, lastUpdated)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write venue %d: %w", v.VenueID, err)
	}
	return v.ID, nil
}

// FindVenuesByInternalIDs returns the venues with the given IDs, in input
// order. Unknown IDs are ignored.
func (db *DB) FindVenuesByInternalIDs(ctx context.Context, ids []string) (venues []models.Venue, err error) {
	defer func(start time.Time) { observe(opFindVenuesByIDs, start, err) }(time.Now())
	if err = db.check(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := ensureContext(ctx)
	defer cancel()

	byID := make(map[string]models.Venue, len(ids))
	for _, c := range chunks(len(ids)) {
		batch := ids[c[0]:c[1]]
		query := `SELECT ` + venueColumns + ` FROM venues WHERE id IN (` + placeholders(len(batch)) + `)`
		if err = db.collectVenues(ctx, query, stringArgs(batch), byID); err != nil {
			return nil, err
		}
	}

	for _, id := range ids {
		if v, ok := byID[id]; ok {
			venues = append(venues, v)
		}
	}
	return venues, nil
}

func (db *DB) collectVenues(ctx context.Context, query string, args []any, into map[string]models.Venue) error {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to find venues: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return err
		}
		into[v.ID] = v
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating venues: %w", err)
	}
	return nil
}

// DeleteVenues removes venues by internal ID and returns how many existed.
// Events are not touched; callers delete a venue's events first.
func (db *DB) DeleteVenues(ctx context.Context, ids []string) (deleted int, err error) {
	defer func(start time.Time) { observe(opDeleteVenues, start, err) }(time.Now())
	if err = db.check(ctx); err != nil {
		return 0, err
	}
	return db.deleteByID(ctx, "venues", ids)
}

// deleteByID removes rows of table by id in chunked transactions.
func (db *DB) deleteByID(ctx context.Context, table string, ids []string) (int, error) {
	deleted := 0
	for _, c := range chunks(len(ids)) {
		batch := ids[c[0]:c[1]]
		var n int64
		err := db.withTx(ctx, func(tx *sql.Tx) error {
			res, err := tx.ExecContext(ctx,
				`DELETE FROM `+table+` WHERE id IN (`+placeholders(len(batch))+`)`, stringArgs(batch)...)
			if err != nil {
				return err
			}
			n, err = res.RowsAffected()
			return err
		})
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s: %w", table, err)
		}
		deleted += int(n)
	}
	return deleted, nil
}
