// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/culturemap/internal/config"
	"github.com/tomtom215/culturemap/internal/database"
	"github.com/tomtom215/culturemap/internal/store"
	syncengine "github.com/tomtom215/culturemap/internal/sync"
)

// persistence is what the server needs from a storage backend: the sync
// gateway, a health check and periodic maintenance.
type persistence interface {
	syncengine.Gateway
	Ping(ctx context.Context) error
	Maintain(ctx context.Context) error
	Backend() string
}

// openGateway opens the backend selected by store.backend.
func openGateway(cfg *config.Config) (persistence, error) {
	switch cfg.Store.Backend {
	case config.BackendBadger, config.BackendMemory, "":
		s, err := store.Open(store.Options{Backend: cfg.Store.Backend, Path: cfg.Store.Path})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendDuckDB:
		db, err := database.New(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
