// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package websocket pushes reconciliation notifications to browser clients.

It uses gorilla/websocket with a hub-client architecture. The hub is run as a
suture service (RunWithContext); the event bus forwarder feeds it
sync_completed messages after every bootstrap and refresh.

Key Components:

  - Hub: owns the client set and fans out broadcasts in client ID order
  - Client: one connection with a read goroutine and a write goroutine
  - Message: {"type": ..., "data": ...} envelope

Message Types:

  - sync_completed: a pass finished; data is models.SyncCompleted
  - sync_progress: a pass changed state (running, completed, error)
  - ping / pong: application-level keepalive initiated by the client

Slow clients whose send buffer fills are dropped rather than blocking the
hub. The number of connected clients is exported as the
websocket_connections_active gauge.

Usage Example:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	upgrader := websocket.Upgrader(nil)
	r.Get("/api/v1/ws", func(w http.ResponseWriter, r *http.Request) {
	    websocket.ServeWS(hub, upgrader, w, r)
	})
*/
package websocket
