// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/culturemap/internal/feed"
	"github.com/tomtom215/culturemap/internal/logging"
	syncengine "github.com/tomtom215/culturemap/internal/sync"
)

// syncErrorResponse maps a failed sync trigger to its HTTP status and error code.
//
//	NotInitializedError     409 NOT_INITIALIZED
//	ErrSyncInProgress       409 SYNC_IN_PROGRESS
//	FetchError, ParseError  502 UPSTREAM_ERROR
//	anything else           500 SYNC_FAILED
func syncErrorResponse(err error) (int, string) {
	var (
		notInit  *syncengine.NotInitializedError
		fetchErr *feed.FetchError
		parseErr *feed.ParseError
	)
	switch {
	case errors.As(err, &notInit):
		return http.StatusConflict, ErrCodeNotInitialized
	case errors.Is(err, syncengine.ErrSyncInProgress):
		return http.StatusConflict, ErrCodeSyncInProgress
	case errors.As(err, &fetchErr), errors.As(err, &parseErr):
		return http.StatusBadGateway, ErrCodeUpstreamError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeSyncFailed
	default:
		return http.StatusInternalServerError, ErrCodeSyncFailed
	}
}

// writeSyncError logs err and writes the mapped error response. Conflicts
// are expected client behavior and log at info.
func writeSyncError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := syncErrorResponse(err)

	logger := logging.Ctx(r.Context())
	evt := logger.Error()
	if status == http.StatusConflict {
		evt = logger.Info()
	}
	evt.Err(err).Str("op", op).Int("status", status).Str("code", code).Msg("Sync trigger failed")

	var details interface{}
	var syncErr *syncengine.SyncError
	if errors.As(err, &syncErr) {
		details = map[string]interface{}{
			"op":      syncErr.Op,
			"records": syncErr.Records,
		}
	}
	NewResponseWriter(w, r).ErrorWithDetails(status, code, err.Error(), details)
}
