// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package sync reconciles the upstream venue and event feeds with the local store.

The package has two layers. The Engine performs single passes against a
Gateway and holds no state between them. The Manager decides when passes
run, serializes them, retries transient feed failures and keeps the last
reports for the status endpoint.

Key Components:

  - Engine.InitializeIfEmpty: one-time bootstrap of an empty store
  - Engine.RefreshEvents: incremental event sync against persisted venues
  - NormalizeVenues / NormalizeEvents: feed records to domain models
  - Manager: startup bootstrap, periodic refresh, manual triggers
  - Gateway: persistence boundary (store.BadgerStore, database.DB)

Bootstrap:

 1. Skip if any venue is persisted
 2. Fetch both feeds concurrently; any failure aborts before writes
 3. Normalize and upsert venues, which assigns internal IDs
 4. Build a VenueIndex from committed venues, normalize and upsert events
 5. Recompute each venue's event references and count
 6. Keep the top RetentionLimit venues by event count (ties in feed order),
    deleting the events of the rest before the venues themselves

A persistence failure rolls the pass back so a retry starts from an empty store.

Refresh:

Stored events are partitioned against the fetched set by external event ID
into new, changed, unchanged and removed. A change in any tracked field
(titles, venue, date, description, presenter) updates the event in place,
keeping its internal ID. Deletes run first, then inserts, then updates, and
finally every venue's references are recomputed.

Normalization never fails a batch. Unusable records are returned as
ValidationSkip values with a reason such as "unknown_venue" or
"invalid_date", logged and counted in sync_records_skipped_total.

Usage Example:

	engine := sync.NewEngine(feedClient, gateway, sync.EngineOptions{
	    RetentionLimit: cfg.Sync.RetentionLimit,
	    Location:       cfg.Location(),
	})
	manager := sync.NewManager(engine, cfg.Sync)
	if err := manager.Bootstrap(ctx); err != nil {
	    log.Fatal(err)
	}
	manager.Start(ctx)
	defer manager.Stop()

Thread Safety:

Engine methods must not run concurrently against the same store. Manager
guarantees this with a single pass mutex; its manual triggers return
ErrSyncInProgress instead of queueing.
*/
package sync
