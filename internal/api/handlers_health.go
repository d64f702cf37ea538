// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package api

import (
	"context"
	"net/http"
	"time"
)

// pingTimeout bounds the store check done by health checks.
const pingTimeout = 2 * time.Second

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status         string     `json:"status"` // healthy or degraded
	Version        string     `json:"version"`
	Backend        string     `json:"backend"`
	StoreConnected bool       `json:"store_connected"`
	SyncInProgress bool       `json:"sync_in_progress"`
	LastSyncTime   *time.Time `json:"last_sync_time,omitempty"`
	LastSyncError  string     `json:"last_sync_error,omitempty"`
	WSClients      int        `json:"ws_clients"`
	UptimeSeconds  float64    `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health.
// Always 200; status is "degraded" when the store does not answer a ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.storeConnected(r.Context())

	health := HealthStatus{
		Status:         "healthy",
		Version:        h.version,
		Backend:        h.backend,
		StoreConnected: connected,
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
	}
	if !connected {
		health.Status = "degraded"
	}
	if h.sync != nil {
		st := h.sync.Status()
		health.SyncInProgress = st.InProgress
		health.LastSyncTime = st.LastSync
		health.LastSyncError = st.LastError
	}
	if h.hub != nil {
		health.WSClients = h.hub.GetClientCount()
	}

	WriteSuccess(w, r, health)
}

// HealthLive handles GET /api/v1/health/live.
// Returns 200 if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":          true,
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /api/v1/health/ready.
// Returns 503 until the store answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.storeConnected(r.Context()) {
		NewResponseWriter(w, r).ServiceUnavailable("Store is not reachable", map[string]interface{}{
			"backend": h.backend,
		})
		return
	}
	WriteSuccess(w, r, map[string]interface{}{
		"ready":   true,
		"backend": h.backend,
	})
}

func (h *Handler) storeConnected(ctx context.Context) bool {
	if h.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return h.store.Ping(ctx) == nil
}
