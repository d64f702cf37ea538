// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

/*
manager.go - Sync Manager Lifecycle and Orchestration

The Manager owns the reconciliation Engine and decides when it runs.

Lifecycle Methods:
  - NewManager(): wrap an engine with sync configuration
  - Bootstrap(): startup bootstrap, fatal only on a first run
  - Start(): begin the periodic refresh loop
  - Stop(): stop the loop and wait for in-flight passes
  - Initialize() / Refresh(): manual triggers used by the HTTP API

Thread Safety:
  - syncMu: serializes every pass (startup, scheduled, manual)
  - mu: protects status fields and the publisher
  - Manual triggers use TryLock and fail fast with ErrSyncInProgress
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/culturemap/internal/config"
	"github.com/tomtom215/culturemap/internal/logging"
	"github.com/tomtom215/culturemap/internal/metrics"
	"github.com/tomtom215/culturemap/internal/models"
)

// EventPublisher publishes sync notifications.
// Implemented by eventbus.Bus.
type EventPublisher interface {
	PublishSyncCompleted(ctx context.Context, evt *models.SyncCompleted) error
}

// Status is a point-in-time view of the manager for the status endpoint.
type Status struct {
	Running       bool             `json:"running"`
	InProgress    bool             `json:"in_progress"`
	LastSync      *time.Time       `json:"last_sync,omitempty"`
	LastBootstrap *BootstrapReport `json:"last_bootstrap,omitempty"`
	LastRefresh   *RefreshReport   `json:"last_refresh,omitempty"`
	LastError     string           `json:"last_error,omitempty"`
	LastErrorAt   *time.Time       `json:"last_error_at,omitempty"`
	NextRefresh   *time.Time       `json:"next_refresh,omitempty"`
}

// Manager schedules and serializes reconciliation passes.
type Manager struct {
	engine         *Engine
	cfg            config.SyncConfig
	eventPublisher EventPublisher

	mu            sync.RWMutex
	syncMu        sync.Mutex // held for the duration of every pass
	running       bool
	inProgress    bool
	stopChan      chan struct{}
	wg            sync.WaitGroup
	lastSync      time.Time
	lastBootstrap *BootstrapReport
	lastRefresh   *RefreshReport
	lastErr       error
	lastErrAt     time.Time
	nextRefresh   time.Time
}

// NewManager creates a manager for engine.
func NewManager(engine *Engine, cfg config.SyncConfig) *Manager {
	logging.Info().
		Int("retention_limit", cfg.RetentionLimit).
		Bool("refresh_enabled", cfg.RefreshEnabled).
		Dur("refresh_interval", cfg.RefreshInterval).
		Int("retry_attempts", cfg.RetryAttempts).
		Msg("Sync manager config loaded")

	return &Manager{
		engine:   engine,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

// SetEventPublisher sets where sync-completed notifications are sent.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventPublisher = p
}

// Engine returns the underlying engine.
func (m *Manager) Engine() *Engine {
	return m.engine
}

// Bootstrap runs the startup bootstrap if it is enabled.
//
// A failure is returned only when the store is still empty afterwards,
// meaning this is a first run with nothing to serve. Otherwise it is logged.
func (m *Manager) Bootstrap(ctx context.Context) error {
	if !m.cfg.InitializeOnStartup {
		logging.Info().Msg("Startup bootstrap disabled (SYNC_INITIALIZE_ON_STARTUP=false)")
		return nil
	}

	m.syncMu.Lock()
	_, err := m.runBootstrap(ctx)
	m.syncMu.Unlock()
	if err == nil {
		return nil
	}

	initialized, _, countErr := m.engine.Initialized(ctx)
	if countErr != nil {
		return fmt.Errorf("startup bootstrap failed: %w (store check also failed: %v)", err, countErr)
	}
	if !initialized {
		return fmt.Errorf("startup bootstrap failed on empty store: %w", err)
	}
	logging.Warn().Err(err).Msg("Startup bootstrap failed, serving existing data")
	return nil
}

// Start begins the periodic refresh loop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	logging.Info().Msg("Starting sync manager...")
	m.running = true
	stop := make(chan struct{})
	m.stopChan = stop
	m.mu.Unlock()

	if !m.cfg.RefreshEnabled {
		logging.Info().Msg("Periodic refresh disabled (SYNC_REFRESH_ENABLED=false)")
		return nil
	}

	// Add before starting so Stop never waits on a missing Add.
	m.wg.Add(1)
	go m.syncLoop(ctx, stop)
	logging.Info().Dur("interval", m.cfg.RefreshInterval).Msg("Periodic event refresh started")
	return nil
}

// Stop stops the refresh loop and waits for it to exit.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	stop := m.stopChan
	m.mu.Unlock()

	logging.Info().Msg("Stopping sync manager...")
	close(stop)
	m.wg.Wait()
	logging.Info().Msg("Sync manager stopped")
	return nil
}

// Initialize triggers a bootstrap. It fails with ErrSyncInProgress if a
// pass is already running.
func (m *Manager) Initialize(ctx context.Context) (*BootstrapReport, error) {
	if !m.syncMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer m.syncMu.Unlock()
	return m.runBootstrap(ctx)
}

// Refresh triggers an event refresh. It fails with ErrSyncInProgress if a
// pass is already running.
func (m *Manager) Refresh(ctx context.Context) (*RefreshReport, error) {
	if !m.syncMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer m.syncMu.Unlock()
	return m.runRefresh(ctx)
}

// LastSyncTime returns when the last successful pass finished.
func (m *Manager) LastSyncTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync
}

// Status returns the manager's current state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		Running:       m.running,
		InProgress:    m.inProgress,
		LastBootstrap: m.lastBootstrap,
		LastRefresh:   m.lastRefresh,
	}
	if !m.lastSync.IsZero() {
		t := m.lastSync
		s.LastSync = &t
	}
	if m.lastErr != nil {
		s.LastError = m.lastErr.Error()
		t := m.lastErrAt
		s.LastErrorAt = &t
	}
	if m.running && m.cfg.RefreshEnabled && !m.nextRefresh.IsZero() {
		t := m.nextRefresh
		s.NextRefresh = &t
	}
	return s
}

// syncLoop runs RefreshEvents on every tick until stopped. Closing stop
// also cancels a scheduled pass that is running or waiting out a retry.
func (m *Manager) syncLoop(parent context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(m.cfg.RefreshInterval)
	defer ticker.Stop()
	m.setNextRefresh(time.Now().Add(m.cfg.RefreshInterval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			m.syncMu.Lock()
			_, err := m.runRefresh(ctx)
			m.syncMu.Unlock()
			m.setNextRefresh(time.Now().Add(m.cfg.RefreshInterval))

			var notInit *NotInitializedError
			switch {
			case errors.As(err, &notInit):
				logging.Warn().Msg("Scheduled refresh skipped: store is not initialized")
			case err != nil:
				logging.Error().Err(err).Msg("Scheduled refresh failed")
			}
		}
	}
}

// runBootstrap executes one bootstrap. Caller holds syncMu.
func (m *Manager) runBootstrap(ctx context.Context) (*BootstrapReport, error) {
	ctx = withCorrelationID(ctx)
	m.setInProgress(true)
	defer m.setInProgress(false)

	start := time.Now()
	var report *BootstrapReport
	err := m.retryWithBackoff(ctx, func() error {
		var err error
		report, err = m.engine.InitializeIfEmpty(ctx)
		return err
	})
	duration := time.Since(start)

	if err != nil {
		metrics.RecordSyncPass(metrics.ModeBootstrap, "error", duration)
		m.recordFailure(err)
		return nil, err
	}

	result := "success"
	if report.Skipped {
		result = "skipped"
	}
	metrics.RecordSyncPass(metrics.ModeBootstrap, result, duration)

	m.mu.Lock()
	m.lastBootstrap = report
	if !report.Skipped {
		m.lastSync = report.FinishedAt
	}
	m.lastErr = nil
	m.mu.Unlock()

	m.publish(ctx, &models.SyncCompleted{
		Mode:           metrics.ModeBootstrap,
		Skipped:        report.Skipped,
		VenuesRetained: report.VenuesRetained,
		EventsInserted: report.EventsPersisted - report.EventsDiscarded,
		EventsTotal:    report.EventsPersisted - report.EventsDiscarded,
		DurationMs:     duration.Milliseconds(),
		CompletedAt:    report.FinishedAt,
	})
	return report, nil
}

// runRefresh executes one refresh. Caller holds syncMu.
func (m *Manager) runRefresh(ctx context.Context) (*RefreshReport, error) {
	ctx = withCorrelationID(ctx)
	m.setInProgress(true)
	defer m.setInProgress(false)

	start := time.Now()
	var report *RefreshReport
	err := m.retryWithBackoff(ctx, func() error {
		var err error
		report, err = m.engine.RefreshEvents(ctx)
		return err
	})
	duration := time.Since(start)

	if err != nil {
		metrics.RecordSyncPass(metrics.ModeRefresh, "error", duration)
		m.recordFailure(err)
		return nil, err
	}
	metrics.RecordSyncPass(metrics.ModeRefresh, "success", duration)

	m.mu.Lock()
	m.lastRefresh = report
	m.lastSync = report.FinishedAt
	m.lastErr = nil
	m.mu.Unlock()

	m.publish(ctx, &models.SyncCompleted{
		Mode:           metrics.ModeRefresh,
		EventsInserted: report.Inserted,
		EventsUpdated:  report.Updated,
		EventsDeleted:  report.Deleted,
		EventsTotal:    report.TotalRemaining,
		DurationMs:     duration.Milliseconds(),
		CompletedAt:    report.FinishedAt,
	})
	return report, nil
}

func (m *Manager) publish(ctx context.Context, evt *models.SyncCompleted) {
	m.mu.RLock()
	p := m.eventPublisher
	m.mu.RUnlock()
	if p == nil {
		return
	}

	evt.CorrelationID = logging.CorrelationIDFromContext(ctx)
	if err := p.PublishSyncCompleted(ctx, evt); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("mode", evt.Mode).Msg("Failed to publish sync completion")
	}
}

// withCorrelationID keeps the caller's correlation id, so a pass triggered
// over HTTP logs and publishes under the request's id.
func withCorrelationID(ctx context.Context) context.Context {
	if logging.CorrelationIDFromContext(ctx) != "" {
		return ctx
	}
	return logging.ContextWithNewCorrelationID(ctx)
}

func (m *Manager) recordFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
	m.lastErrAt = time.Now()
}

func (m *Manager) setInProgress(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inProgress = v
}

func (m *Manager) setNextRefresh(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRefresh = t
}
