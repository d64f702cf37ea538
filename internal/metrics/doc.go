// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
Package metrics provides Prometheus instrumentation for Culturemap.

All collectors are registered on the default registry through promauto and
exposed by the API server at /metrics.

# Metric Families

Sync:
  - sync_pass_duration_seconds{mode}
  - sync_passes_total{mode,result}
  - sync_event_changes_total{change}
  - sync_records_skipped_total{kind,reason}
  - sync_last_success_timestamp{mode}
  - sync_venues_retained

Feed and circuit breaker:
  - feed_fetch_duration_seconds{feed}
  - feed_fetch_errors_total{feed,error_type}
  - feed_bytes_total{feed}
  - circuit_breaker_state{name}
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_transitions_total{name,from,to}

Store, API, WebSocket and event bus:
  - store_operation_duration_seconds{backend,operation}
  - store_operation_errors_total{backend,operation}
  - api_requests_total{method,path,status}
  - api_request_duration_seconds{method,path}
  - websocket_connections_active
  - eventbus_messages_published_total{topic}

Example PromQL for refresh failure rate:

	sum(rate(sync_passes_total{mode="refresh",result="error"}[1h]))
	  / sum(rate(sync_passes_total{mode="refresh"}[1h]))
*/
package metrics
