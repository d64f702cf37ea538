// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package api

import (
	"net/http"
	"slices"
	"strings"

	"github.com/tomtom215/culturemap/internal/websocket"
)

// WebSocket handles GET /api/v1/ws.
// Clients receive sync_completed and sync_progress messages.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket notifications are disabled", nil)
		return
	}
	websocket.ServeWS(h.hub, h.upgrader, w, r)
}

// originChecker builds the upgrader's CheckOrigin from the allowed origins.
// A nil result leaves gorilla's same-origin check in place.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients do not send Origin
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
