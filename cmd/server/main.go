// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // feed timezone must resolve on minimal images

	"github.com/tomtom215/culturemap/internal/api"
	"github.com/tomtom215/culturemap/internal/config"
	"github.com/tomtom215/culturemap/internal/eventbus"
	"github.com/tomtom215/culturemap/internal/feed"
	"github.com/tomtom215/culturemap/internal/logging"
	"github.com/tomtom215/culturemap/internal/supervisor"
	"github.com/tomtom215/culturemap/internal/supervisor/services"
	syncengine "github.com/tomtom215/culturemap/internal/sync"
	ws "github.com/tomtom215/culturemap/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// manualSyncTimeout bounds a pass triggered through the API.
const manualSyncTimeout = 5 * time.Minute

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("store_backend", cfg.Store.Backend).
		Str("venues_url", cfg.Feed.VenuesURL).
		Str("events_url", cfg.Feed.EventsURL).
		Msg("Starting Culturemap")

	gw, err := openGateway(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := gw.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Str("backend", gw.Backend()).Msg("Store initialized successfully")

	var feeds syncengine.FeedSource
	if cfg.Feed.CircuitBreakerEnabled {
		feeds = feed.NewCircuitBreakerClient(&cfg.Feed, feed.DefaultBreakerSettings())
		logging.Info().Msg("Feed client circuit breaker enabled")
	} else {
		feeds = feed.NewClient(&cfg.Feed)
	}

	engine := syncengine.NewEngine(feeds, gw, syncengine.EngineOptions{
		RetentionLimit: cfg.Sync.RetentionLimit,
		Location:       cfg.Location(),
		Reference: syncengine.Point{
			Latitude:  cfg.Feed.ReferenceLatitude,
			Longitude: cfg.Feed.ReferenceLongitude,
		},
	})
	syncManager := syncengine.NewManager(engine, cfg.Sync)

	bus := eventbus.New(eventbus.Config{})
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	syncManager.SetEventPublisher(bus)

	wsHub := ws.NewHub()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// The first bootstrap runs before the API is served so an empty store
	// is never exposed. Fatal only when there is nothing to serve.
	if err := syncManager.Bootstrap(ctx); err != nil {
		_ = bus.Close()
		_ = gw.Close()
		logging.Fatal().Err(err).Msg("Failed to bootstrap store")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: CORS is configured with wildcard origin (CORS_ORIGINS=*)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  Any website can trigger sync passes and open WebSocket connections.")
		logging.Warn().Msg("  RECOMMENDED: Set specific origins in production:")
		logging.Warn().Msg("    CORS_ORIGINS=https://yourdomain.com")
		logging.Warn().Msg("============================================================")
	}

	handler := api.NewHandler(api.HandlerDeps{
		Sync:           syncManager,
		Store:          gw,
		Backend:        gw.Backend(),
		Hub:            wsHub,
		AllowedOrigins: cfg.Security.CORSOrigins,
		SyncTimeout:    manualSyncTimeout,
		Version:        version,
	})

	router := api.NewRouter(handler, api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	}))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer
	tree.AddDataService(services.NewMaintenanceService(gw, 0))

	// Messaging layer
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(eventbus.NewForwarder(bus, wsHub))
	tree.AddMessagingService(services.NewSyncService(syncManager))
	logging.Info().Msg("WebSocket hub, event forwarder and sync manager added to supervisor tree")

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
