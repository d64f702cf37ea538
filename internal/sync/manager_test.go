// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/culturemap/internal/config"
	"github.com/tomtom215/culturemap/internal/feed"
	"github.com/tomtom215/culturemap/internal/logging"
	"github.com/tomtom215/culturemap/internal/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.SyncCompleted
	err    error
}

func (p *recordingPublisher) PublishSyncCompleted(_ context.Context, evt *models.SyncCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *evt)
	return p.err
}

func (p *recordingPublisher) published() []models.SyncCompleted {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.SyncCompleted(nil), p.events...)
}

func newTestSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		RetentionLimit:      DefaultRetentionLimit,
		InitializeOnStartup: true,
		RefreshEnabled:      true,
		RefreshInterval:     time.Hour,
		RetryAttempts:       2,
		RetryDelay:          time.Millisecond,
	}
}

func newTestManager(t *testing.T, feeds *fakeFeeds, cfg config.SyncConfig) (*Manager, *recordingPublisher) {
	t.Helper()
	engine := newTestEngine(feeds, newMemoryGateway(t), cfg.RetentionLimit)
	m := NewManager(engine, cfg)
	pub := &recordingPublisher{}
	m.SetEventPublisher(pub)
	return m, pub
}

func TestManager_InitializeAndRefresh(t *testing.T) {
	feeds := twelveVenueFeeds()
	m, pub := newTestManager(t, feeds, newTestSyncConfig())
	ctx := context.Background()

	boot, err := m.Initialize(ctx)
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if boot.VenuesRetained != 10 {
		t.Errorf("VenuesRetained = %d, want 10", boot.VenuesRetained)
	}

	refresh, err := m.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if refresh.Unchanged != 75 {
		t.Errorf("Unchanged = %d, want 75", refresh.Unchanged)
	}

	status := m.Status()
	if status.LastBootstrap == nil || status.LastRefresh == nil {
		t.Error("status is missing the last reports")
	}
	if status.LastSync == nil || status.LastError != "" {
		t.Errorf("status = %+v, want a last sync and no error", status)
	}

	events := pub.published()
	if len(events) != 2 {
		t.Fatalf("published %d events, want 2", len(events))
	}
	if events[0].Mode != "bootstrap" || events[1].Mode != "refresh" {
		t.Errorf("published modes = %s, %s", events[0].Mode, events[1].Mode)
	}
	if events[1].CorrelationID == "" {
		t.Error("published event has no correlation id")
	}
	if events[1].EventsTotal != 75 {
		t.Errorf("EventsTotal = %d, want 75", events[1].EventsTotal)
	}
}

func TestManager_KeepsCallerCorrelationID(t *testing.T) {
	m, pub := newTestManager(t, twelveVenueFeeds(), newTestSyncConfig())

	ctx := logging.ContextWithCorrelationID(context.Background(), "req-corr")
	if _, err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if _, err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	events := pub.published()
	if len(events) != 2 {
		t.Fatalf("published %d events, want 2", len(events))
	}
	if events[0].CorrelationID != "req-corr" {
		t.Errorf("bootstrap correlation id = %q, want req-corr", events[0].CorrelationID)
	}
	if id := events[1].CorrelationID; id == "" || id == "req-corr" {
		t.Errorf("refresh correlation id = %q, want a fresh id", id)
	}
}

func TestManager_RejectsConcurrentPass(t *testing.T) {
	m, _ := newTestManager(t, twelveVenueFeeds(), newTestSyncConfig())

	m.syncMu.Lock()
	defer m.syncMu.Unlock()

	if _, err := m.Initialize(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("Initialize() error = %v, want ErrSyncInProgress", err)
	}
	if _, err := m.Refresh(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("Refresh() error = %v, want ErrSyncInProgress", err)
	}
}

func TestManager_RetriesFetchErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		failures  int
		wantErr   bool
		wantCalls int
	}{
		{"recovers after transient failures", fetchErr(feed.FeedEvents), 2, false, 3},
		{"gives up after retry budget", fetchErr(feed.FeedEvents), -1, true, 3},
		{"parse errors are not retried", &feed.ParseError{Feed: feed.FeedEvents, Err: errInjected}, -1, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feeds := twelveVenueFeeds()
			m, _ := newTestManager(t, feeds, newTestSyncConfig())
			ctx := context.Background()
			if _, err := m.Initialize(ctx); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}
			_, before := feeds.calls()

			feeds.failEvents(tt.err, tt.failures)
			_, err := m.Refresh(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Refresh() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, after := feeds.calls(); after-before != tt.wantCalls {
				t.Errorf("FetchEvents called %d times, want %d", after-before, tt.wantCalls)
			}
			if tt.wantErr && m.Status().LastError == "" {
				t.Error("status does not record the failure")
			}
		})
	}
}

func TestManager_RefreshNotInitializedIsNotRetried(t *testing.T) {
	feeds := twelveVenueFeeds()
	m, _ := newTestManager(t, feeds, newTestSyncConfig())

	_, err := m.Refresh(context.Background())
	var notInit *NotInitializedError
	if !errors.As(err, &notInit) {
		t.Fatalf("Refresh() error = %v, want *NotInitializedError", err)
	}
	if _, calls := feeds.calls(); calls != 0 {
		t.Errorf("FetchEvents called %d times, want 0", calls)
	}
}

func TestManager_Bootstrap(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := newTestSyncConfig()
		cfg.InitializeOnStartup = false
		feeds := twelveVenueFeeds()
		m, _ := newTestManager(t, feeds, cfg)
		if err := m.Bootstrap(context.Background()); err != nil {
			t.Fatalf("Bootstrap() error = %v", err)
		}
		if v, _ := feeds.calls(); v != 0 {
			t.Error("disabled bootstrap fetched feeds")
		}
	})

	t.Run("first run failure is fatal", func(t *testing.T) {
		feeds := twelveVenueFeeds()
		feeds.venueErr = fetchErr(feed.FeedVenues)
		m, _ := newTestManager(t, feeds, newTestSyncConfig())
		if err := m.Bootstrap(context.Background()); err == nil {
			t.Fatal("Bootstrap() succeeded on an empty store with a failing feed")
		}
	})

	t.Run("already initialized", func(t *testing.T) {
		feeds := twelveVenueFeeds()
		m, pub := newTestManager(t, feeds, newTestSyncConfig())
		ctx := context.Background()
		if err := m.Bootstrap(ctx); err != nil {
			t.Fatalf("first Bootstrap() error = %v", err)
		}
		feeds.venueErr = fetchErr(feed.FeedVenues)
		if err := m.Bootstrap(ctx); err != nil {
			t.Fatalf("second Bootstrap() error = %v", err)
		}
		events := pub.published()
		if len(events) != 2 || !events[1].Skipped {
			t.Errorf("published = %+v, want a skipped second bootstrap", events)
		}
	})
}

func TestManager_StartStop(t *testing.T) {
	cfg := newTestSyncConfig()
	cfg.RefreshInterval = 10 * time.Millisecond
	m, pub := newTestManager(t, twelveVenueFeeds(), cfg)
	ctx := context.Background()

	if _, err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Start(ctx); err == nil {
		t.Error("second Start() succeeded, want error")
	}

	deadline := time.Now().Add(5 * time.Second)
	for m.Status().LastRefresh == nil {
		if time.Now().After(deadline) {
			t.Fatal("scheduled refresh did not run")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !m.Status().Running {
		t.Error("status does not report running")
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := m.Stop(); err == nil {
		t.Error("second Stop() succeeded, want error")
	}

	published := len(pub.published())
	time.Sleep(30 * time.Millisecond)
	if len(pub.published()) != published {
		t.Error("refresh ran after Stop")
	}
}

func TestManager_PublishFailureDoesNotFailPass(t *testing.T) {
	m, pub := newTestManager(t, twelveVenueFeeds(), newTestSyncConfig())
	pub.err = errors.New("bus closed")

	if _, err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	cfg := newTestSyncConfig()
	cfg.RetryAttempts = 5
	cfg.RetryDelay = time.Hour
	m := NewManager(nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- m.retryWithBackoff(ctx, func() error {
			calls++
			return fetchErr(feed.FeedEvents)
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("retryWithBackoff() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retryWithBackoff did not return after cancel")
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestManager_StopInterruptsRetryBackoff(t *testing.T) {
	feeds := twelveVenueFeeds()
	cfg := newTestSyncConfig()
	cfg.RefreshInterval = 5 * time.Millisecond
	cfg.RetryAttempts = 5
	cfg.RetryDelay = time.Hour
	m, _ := newTestManager(t, feeds, cfg)
	ctx := context.Background()

	if _, err := m.Initialize(ctx); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	_, before := feeds.calls()
	feeds.failEvents(fetchErr(feed.FeedEvents), -1)

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Wait for the scheduled refresh to fail once and enter its backoff.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, calls := feeds.calls(); calls > before {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("scheduled refresh never fetched the event feed")
		}
		time.Sleep(time.Millisecond)
	}

	stopped := make(chan error, 1)
	go func() { stopped <- m.Stop() }()

	select {
	case err := <-stopped:
		if err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() blocked on the retry backoff")
	}
	if m.Status().Running {
		t.Error("Status().Running = true after Stop")
	}
}
