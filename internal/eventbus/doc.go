// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package eventbus decouples the sync manager from the components that react
to completed passes.

The bus is a Watermill gochannel pub/sub: in-process, non-persistent, and
logging through the zerolog Watermill adapter. The sync manager publishes a
models.SyncCompleted message on "sync.completed" after every bootstrap and
refresh; the Forwarder, run under the supervisor tree, relays each one to the
WebSocket hub.

Messages carry the pass mode and correlation ID as metadata, so a client
notification can be traced back to the log lines of the pass that caused it.

	bus := eventbus.New(eventbus.Config{})
	manager.SetEventPublisher(bus)
	tree.AddMessagingService(eventbus.NewForwarder(bus, hub))
*/
package eventbus
