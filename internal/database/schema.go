// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package database

import (
	"context"
	"fmt"
)

// The tables carry no PRIMARY KEY, UNIQUE or FOREIGN KEY constraints;
// DuckDB checks them eagerly inside a transaction. Uniqueness of id and
// the external keys is kept by the upsert code.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS venues (
		id VARCHAR NOT NULL,
		venue_id BIGINT NOT NULL,
		name_local VARCHAR NOT NULL,
		name_foreign VARCHAR NOT NULL,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		distance_km DOUBLE NOT NULL DEFAULT 0,
		event_refs VARCHAR NOT NULL DEFAULT '[]',
		event_count INTEGER NOT NULL DEFAULT 0,
		last_updated TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id VARCHAR NOT NULL,
		event_id BIGINT NOT NULL,
		title_local VARCHAR NOT NULL,
		title_foreign VARCHAR NOT NULL,
		venue_ref VARCHAR NOT NULL,
		when_scheduled TIMESTAMP NOT NULL,
		description VARCHAR NOT NULL,
		presenter VARCHAR NOT NULL
	)`,
}

// createTables creates the schema if it does not exist
func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
