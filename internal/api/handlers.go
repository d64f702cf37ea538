// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package api

import (
	"context"
	"time"

	gorillaws "github.com/gorilla/websocket"

	syncengine "github.com/tomtom215/culturemap/internal/sync"
	"github.com/tomtom215/culturemap/internal/websocket"
)

// SyncController triggers and reports reconciliation passes.
// Implemented by *sync.Manager.
type SyncController interface {
	Initialize(ctx context.Context) (*syncengine.BootstrapReport, error)
	Refresh(ctx context.Context) (*syncengine.RefreshReport, error)
	Status() syncengine.Status
}

// HealthChecker reports whether the persistence backend can serve reads.
// Implemented by *store.BadgerStore and *database.DB.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HandlerDeps are the collaborators of Handler. Hub may be nil, in which
// case the WebSocket endpoint answers 503.
type HandlerDeps struct {
	Sync    SyncController
	Store   HealthChecker
	Backend string
	Hub     *websocket.Hub

	// AllowedOrigins are the origins accepted for WebSocket upgrades, the
	// same list CORS uses. Empty means same-origin only, "*" allows any.
	AllowedOrigins []string

	// SyncTimeout bounds a manually triggered pass. The pass is detached
	// from the request, so a client disconnect does not abort it.
	SyncTimeout time.Duration

	Version string
}

// Handler holds the HTTP handlers.
type Handler struct {
	sync        SyncController
	store       HealthChecker
	backend     string
	hub         *websocket.Hub
	upgrader    *gorillaws.Upgrader
	syncTimeout time.Duration
	version     string
	startTime   time.Time
}

// NewHandler creates the handler set.
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		sync:        deps.Sync,
		store:       deps.Store,
		backend:     deps.Backend,
		hub:         deps.Hub,
		syncTimeout: deps.SyncTimeout,
		version:     deps.Version,
		startTime:   time.Now(),
	}
	if h.syncTimeout <= 0 {
		h.syncTimeout = 5 * time.Minute
	}
	if h.version == "" {
		h.version = "dev"
	}
	h.upgrader = websocket.Upgrader(originChecker(deps.AllowedOrigins))
	return h
}
