// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/culturemap/internal/logging"
	"github.com/tomtom215/culturemap/internal/metrics"
	"github.com/tomtom215/culturemap/internal/websocket"
)

// SyncInitialize handles POST /api/v1/sync/initialize.
//
// Runs InitializeIfEmpty and returns its BootstrapReport. A populated store
// yields 200 with skipped=true and no upstream request.
func (h *Handler) SyncInitialize(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.passContext(w, r)
	defer cancel()

	h.notifyStarted(r, metrics.ModeBootstrap)
	report, err := h.sync.Initialize(ctx)
	h.notifyFinished(r, metrics.ModeBootstrap, err)
	if err != nil {
		writeSyncError(w, r, "initialize", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Bool("skipped", report.Skipped).
		Int("venues_retained", report.VenuesRetained).
		Int("events_persisted", report.EventsPersisted).
		Msg("Manual bootstrap finished")
	WriteSuccess(w, r, report)
}

// SyncRefresh handles POST /api/v1/sync/refresh.
//
// Runs RefreshEvents and returns its RefreshReport. 409 NOT_INITIALIZED when
// the store holds no venues.
func (h *Handler) SyncRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.passContext(w, r)
	defer cancel()

	h.notifyStarted(r, metrics.ModeRefresh)
	report, err := h.sync.Refresh(ctx)
	h.notifyFinished(r, metrics.ModeRefresh, err)
	if err != nil {
		writeSyncError(w, r, "refresh", err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int("inserted", report.Inserted).
		Int("updated", report.Updated).
		Int("deleted", report.Deleted).
		Int("total_remaining", report.TotalRemaining).
		Msg("Manual refresh finished")
	WriteSuccess(w, r, report)
}

// SyncStatus handles GET /api/v1/sync/status.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, h.sync.Status())
}

// passContext detaches the pass from request cancellation but keeps its
// values, so the correlation id reaches the sync logs and notification.
// The write deadline is moved past the pass timeout since a pass usually
// outlives the server's WriteTimeout.
func (h *Handler) passContext(w http.ResponseWriter, r *http.Request) (context.Context, context.CancelFunc) {
	deadline := time.Now().Add(h.syncTimeout + writeGrace)
	if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Could not extend write deadline")
	}
	return context.WithTimeout(context.WithoutCancel(r.Context()), h.syncTimeout)
}

// writeGrace is left after the pass timeout to write the response.
const writeGrace = 5 * time.Second

// notifyStarted broadcasts sync_progress "running" for a manual trigger.
func (h *Handler) notifyStarted(r *http.Request, mode string) {
	h.notifyProgress(r, mode, "running", nil)
}

// notifyFinished broadcasts the outcome of a manual trigger.
func (h *Handler) notifyFinished(r *http.Request, mode string, err error) {
	if err != nil {
		h.notifyProgress(r, mode, "error", err)
		return
	}
	h.notifyProgress(r, mode, "completed", nil)
}

func (h *Handler) notifyProgress(r *http.Request, mode, status string, err error) {
	if h.hub == nil {
		return
	}
	data := &websocket.SyncProgressData{
		Mode:          mode,
		Status:        status,
		CorrelationID: logging.CorrelationIDFromContext(r.Context()),
	}
	if err != nil {
		data.Error = err.Error()
	}
	h.hub.BroadcastSyncProgress(data)
}
