// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package services

import (
	"context"
	"time"

	"github.com/tomtom215/culturemap/internal/logging"
)

// Maintainer is implemented by the persistence backends:
// *store.BadgerStore runs value log GC, *database.DB checkpoints the WAL.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// MaintenanceService calls Maintain on a fixed interval. Failures are logged
// and retried on the next tick; they never restart the service.
type MaintenanceService struct {
	target   Maintainer
	interval time.Duration
	name     string
}

// NewMaintenanceService creates a maintenance loop. interval <= 0 means 10m.
func NewMaintenanceService(target Maintainer, interval time.Duration) *MaintenanceService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MaintenanceService{
		target:   target,
		interval: interval,
		name:     "store-maintenance",
	}
}

// Serve implements suture.Service.
func (m *MaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	logger := logging.WithComponent(m.name)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := m.target.Maintain(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn().Err(err).Msg("Store maintenance failed")
				continue
			}
			logger.Debug().Dur("duration", time.Since(start)).Msg("Store maintenance complete")
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (m *MaintenanceService) String() string {
	return m.name
}
