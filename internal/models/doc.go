// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

// Package models defines the data structures shared across Culturemap:
// persisted venues and events, the raw records decoded from the upstream
// XML feeds, and the standard API response envelope.
package models
