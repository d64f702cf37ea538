// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/culturemap/internal/feed"
	"github.com/tomtom215/culturemap/internal/logging"
)

// retryWithBackoff executes fn, retrying transient feed failures with
// exponential backoff. Only errors that feed.IsRetryable accepts are
// retried; everything else, including persistence failures, returns at once.
// The context is used for cancellation during backoff waits.
func (m *Manager) retryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	delay := m.cfg.RetryDelay
	attempts := m.cfg.RetryAttempts + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !feed.IsRetryable(err) {
			return err
		}

		if attempt < attempts-1 {
			logging.Ctx(ctx).Warn().Err(err).
				Int("attempt", attempt+1).
				Int("max_attempts", attempts).
				Dur("delay", delay).
				Msg("Retry attempt")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	if attempts == 1 {
		return err
	}
	return fmt.Errorf("max retry attempts reached: %w", err)
}
