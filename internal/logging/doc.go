// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

// Package logging provides centralized zerolog-based structured logging for Culturemap.
//
// A single global logger is configured once from main via Init and shared by
// every package. JSON output is the default; console output is available for
// local development.
//
// # Usage
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("feed", "events").Int("records", n).Msg("Feed fetched")
//
// Sync passes run under a correlation ID so that all log lines of one pass
// can be grouped:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("Refresh started")
//
// # Adapters
//
// SlogHandler bridges log/slog to zerolog for the supervisor tree
// (sutureslog). WatermillAdapter bridges watermill.LoggerAdapter for the
// in-process event bus.
//
// # Configuration
//
// Environment variables (read by the config package):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
package logging
