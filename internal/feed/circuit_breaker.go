// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/culturemap/internal/config"
	"github.com/tomtom215/culturemap/internal/logging"
	"github.com/tomtom215/culturemap/internal/metrics"
	"github.com/tomtom215/culturemap/internal/models"
)

// BreakerName labels the feed circuit breaker in logs and metrics.
const BreakerName = "lcsd-feed"

// BreakerSettings tunes the feed circuit breaker.
type BreakerSettings struct {
	// ConsecutiveFailures opens the circuit.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the circuit stays open before a half-open trial request.
	OpenTimeout time.Duration
}

// DefaultBreakerSettings trips after 5 consecutive transport failures and
// tries again after 2 minutes.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 2 * time.Minute}
}

// CircuitBreakerClient wraps Client with a circuit breaker so that a dead
// upstream is not hammered by scheduled refreshes and manual triggers.
//
// Only FetchError counts as a failure. A ParseError means the upstream
// answered, so it never trips the circuit. When the circuit is open the call
// fails fast with a FetchError wrapping gobreaker.ErrOpenState.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient creates a feed client protected by a circuit breaker.
func NewCircuitBreakerClient(cfg *config.FeedConfig, settings BreakerSettings) *CircuitBreakerClient {
	return wrapWithBreaker(NewClient(cfg), settings)
}

func wrapWithBreaker(client *Client, settings BreakerSettings) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: 1, // one trial request while half-open
		Interval:    0, // never reset counts while closed; consecutive failures decide
		Timeout:     settings.OpenTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= settings.ConsecutiveFailures
			if trip {
				logging.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening feed circuit")
			}
			return trip
		},

		IsSuccessful: func(err error) bool {
			var fe *FetchError
			return !errors.As(err, &fe)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: BreakerName}
}

// FetchVenues downloads the venue catalogue with circuit breaker protection.
func (cbc *CircuitBreakerClient) FetchVenues(ctx context.Context) (*models.VenueFeed, error) {
	return castResult[models.VenueFeed](cbc.execute(FeedVenues, cbc.client.venuesURL, func() (interface{}, error) {
		return cbc.client.FetchVenues(ctx)
	}))
}

// FetchEvents downloads the event catalogue with circuit breaker protection.
func (cbc *CircuitBreakerClient) FetchEvents(ctx context.Context) (*models.EventFeed, error) {
	return castResult[models.EventFeed](cbc.execute(FeedEvents, cbc.client.eventsURL, func() (interface{}, error) {
		return cbc.client.FetchEvents(ctx)
	}))
}

// State returns the current breaker state ("closed", "half-open", "open").
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

// execute wraps a feed call with circuit breaker protection
func (cbc *CircuitBreakerClient) execute(feed, url string, fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)
	if err == nil {
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		return result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
		logging.Warn().Str("feed", feed).Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		return nil, &FetchError{Feed: feed, URL: url, Err: err}
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
	return nil, err
}

// castResult type-casts the circuit breaker result
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
