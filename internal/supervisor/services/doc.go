// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package services adapts Culturemap components to suture's Serve(ctx) model.

  - SyncService: Start/Stop lifecycle of the sync manager's refresh loop.
  - WebSocketHubService: the hub's RunWithContext loop.
  - HTTPServerService: ListenAndServe with a bounded graceful Shutdown.
  - MaintenanceService: periodic Maintain on the persistence backend.

Each wrapper depends on a small interface (StartStopManager, ContextHub,
HTTPServer, Maintainer) rather than the concrete type, so tests use mocks.
Every wrapper returns ctx.Err() on a clean shutdown, and any other error
makes the supervisor restart it.
*/
package services
