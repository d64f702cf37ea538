// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package database implements the sync persistence gateway on DuckDB.

It is selected with STORE_BACKEND=duckdb and suits deployments that want to
query the directory with SQL next to the service. The schema is two flat
tables:

	venues (id, venue_id, name_local, name_foreign, latitude, longitude,
	        distance_km, event_refs, event_count, last_updated)
	events (id, event_id, title_local, title_foreign, venue_ref,
	        when_scheduled, description, presenter)

event_refs holds the JSON array of a venue's event IDs. Timestamps are stored
in UTC.

Bulk writes run in transactions of at most 256 rows, and IN lists are bound
in chunks of the same size. Upserts resolve IDs by external key exactly like
the badger store, so both backends pass the same engine tests.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()
	engine := sync.NewEngine(feedClient, db, opts)
*/
package database
