// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package store implements the sync persistence gateway on BadgerDB.

Two backends share one implementation: "badger" keeps data on disk under
STORE_PATH, "memory" runs Badger in in-memory mode and loses everything on
exit. Records are JSON documents (goccy/go-json) with secondary keys:

	venue:<id>                       venue document
	venue_eid:<venueId>              -> venue id
	event:<id>                       event document
	event_eid:<eventId>              -> event id
	event_venue:<venueRef>:<id>      empty, lists a venue's events

Bulk writes are split into transactions of at most 256 records. Upserts
resolve IDs by external key, so replaying a batch never duplicates a venue
or event.
*/
package store
