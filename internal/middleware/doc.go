// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package middleware provides HTTP instrumentation middleware.

PrometheusMetrics records api_requests_total and api_request_duration_seconds
for every request. The path label is the chi route pattern when the request
was routed by chi (for example /api/v1/sync/{op} stays one series), and the
raw URL path otherwise.

Usage with chi:

	r.Use(middleware.ChiPrometheusMetrics)
*/
package middleware
