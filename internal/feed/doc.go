// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

// Package feed downloads and decodes the upstream LCSD venue and event
// catalogues.
//
// Client performs a single GET per call, paced by a token-bucket limiter and
// bounded by an HTTP timeout and a body size cap. CircuitBreakerClient adds
// a sony/gobreaker circuit in front of it. Both satisfy the sync package's
// FeedSource interface.
//
// Failures are typed: FetchError for transport problems and non-2xx
// responses (retryable), ParseError for documents that cannot be decoded
// (not retryable).
package feed
