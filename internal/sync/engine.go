// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/culturemap/internal/logging"
	"github.com/tomtom215/culturemap/internal/metrics"
	"github.com/tomtom215/culturemap/internal/models"
)

// DefaultRetentionLimit is the number of venues kept after a bootstrap.
const DefaultRetentionLimit = 10

// EngineOptions configures an Engine.
type EngineOptions struct {
	// RetentionLimit is how many venues survive a bootstrap. <= 0 keeps all.
	RetentionLimit int
	// Location interprets feed dates without an offset.
	Location *time.Location
	// Reference is the origin for venue distances.
	Reference Point
	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// Engine reconciles the upstream feeds with a Gateway.
//
// Engine holds no records between calls and does no locking of its own;
// callers serialize passes (see Manager).
type Engine struct {
	feeds FeedSource
	gw    Gateway
	opts  EngineOptions
}

// NewEngine creates an engine over the given feeds and persistence gateway.
func NewEngine(feeds FeedSource, gw Gateway, opts EngineOptions) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Reference == (Point{}) {
		opts.Reference = DefaultReference
	}
	return &Engine{feeds: feeds, gw: gw, opts: opts}
}

func (e *Engine) normalizeOptions() NormalizeOptions {
	return NormalizeOptions{Location: e.opts.Location, Reference: e.opts.Reference}
}

func (e *Engine) now() time.Time {
	return e.opts.Now()
}

// Initialized reports whether the store holds any venues.
func (e *Engine) Initialized(ctx context.Context) (bool, int, error) {
	n, err := e.gw.CountVenues(ctx)
	if err != nil {
		return false, 0, &SyncError{Op: OpCountVenues, Err: err}
	}
	return n > 0, n, nil
}

// recordSkips logs and counts normalization skips.
func recordSkips(logger *zerolog.Logger, skips []ValidationSkip) {
	for _, s := range skips {
		metrics.RecordSkip(s.Kind, s.Reason)
		logger.Debug().
			Str("kind", s.Kind).
			Str("external_id", s.ExternalID).
			Str("reason", s.Reason).
			Str("detail", s.Detail).
			Msg("Skipped feed record")
	}
	if len(skips) > 0 {
		logger.Info().Int("skipped", len(skips)).Msg("Feed records skipped during normalization")
	}
}

// applyEventRefs sets refs, counts and LastUpdated on every venue.
// Venues with no events get an empty list.
func applyEventRefs(venues []models.Venue, events []models.Event, now time.Time) {
	refs := buildEventRefs(events)
	for i := range venues {
		venues[i].SetEvents(refs[venues[i].ID], now)
	}
}

func eventIDsOf(events []models.Event) []string {
	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}
	return ids
}

func venueIDsOf(venues []models.Venue) []string {
	ids := make([]string, len(venues))
	for i := range venues {
		ids[i] = venues[i].ID
	}
	return ids
}

func passLogger(ctx context.Context, mode string) zerolog.Logger {
	return logging.Ctx(ctx).With().Str("component", "sync").Str("mode", mode).Logger()
}
