// Culturemap - Cultural Venue and Event Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/culturemap

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/culturemap/internal/config"
	"github.com/tomtom215/culturemap/internal/models"
	"github.com/tomtom215/culturemap/internal/store"
	syncengine "github.com/tomtom215/culturemap/internal/sync"
	"github.com/tomtom215/culturemap/internal/websocket"
)

func newTestRouter(h *Handler, cfg *ChiMiddlewareConfig) http.Handler {
	return NewRouter(h, NewChiMiddleware(cfg)).SetupChi()
}

func TestRouter_Routing(t *testing.T) {
	h := newTestHandler(&fakeSync{refReport: &syncengine.RefreshReport{}}, &fakeStore{})
	router := newTestRouter(h, &ChiMiddlewareConfig{RateLimitDisabled: true})

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/api/v1/health", http.StatusOK},
		{"live", http.MethodGet, "/api/v1/health/live", http.StatusOK},
		{"ready", http.MethodGet, "/api/v1/health/ready", http.StatusOK},
		{"status", http.MethodGet, "/api/v1/sync/status", http.StatusOK},
		{"refresh", http.MethodPost, "/api/v1/sync/refresh", http.StatusOK},
		{"refresh via GET", http.MethodGet, "/api/v1/sync/refresh", http.StatusMethodNotAllowed},
		{"unknown", http.MethodGet, "/api/v1/venues", http.StatusNotFound},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, router, tt.method, tt.path)
			if rec.Code != tt.want {
				t.Fatalf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Error("X-Request-ID header missing")
			}
		})
	}
}

func TestRouter_EnvelopeMetaAndHeaders(t *testing.T) {
	router := newTestRouter(newTestHandler(&fakeSync{}, &fakeStore{}), &ChiMiddlewareConfig{RateLimitDisabled: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/status", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	env := decodeEnvelope(t, rec)
	if env.Meta == nil || env.Meta.RequestID != "req-42" || env.Meta.CorrelationID == "" {
		t.Errorf("meta = %+v", env.Meta)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("security headers = %v", rec.Header())
	}
}

func TestRouter_NotFoundUsesEnvelope(t *testing.T) {
	router := newTestRouter(newTestHandler(&fakeSync{}, &fakeStore{}), &ChiMiddlewareConfig{RateLimitDisabled: true})
	env := decodeEnvelope(t, serve(t, router, http.MethodGet, "/nope"))
	if env.Success || env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("envelope = %+v", env)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(newTestHandler(&fakeSync{}, &fakeStore{}), &ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"https://map.example"},
		RateLimitDisabled:  true,
	})

	tests := []struct {
		origin string
		want   string
	}{
		{"https://map.example", "https://map.example"},
		{"https://evil.example", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/sync/refresh", nil)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %s: Allow-Origin = %q, want %q", tt.origin, got, tt.want)
		}
	}
}

func TestRouter_SyncTriggersAreRateLimited(t *testing.T) {
	router := newTestRouter(newTestHandler(&fakeSync{refReport: &syncengine.RefreshReport{}}, &fakeStore{}), DefaultChiMiddlewareConfig())

	var last *httptest.ResponseRecorder
	for i := 0; i <= RateLimitSync.Requests; i++ {
		last = serve(t, router, http.MethodPost, "/api/v1/sync/refresh")
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("request %d status = %d, want 429", RateLimitSync.Requests+1, last.Code)
	}
	if env := decodeEnvelope(t, last); env.Error == nil || env.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("envelope = %s", last.Body.String())
	}

	// Status reads are not subject to the sync trigger limit
	if rec := serve(t, router, http.MethodGet, "/api/v1/sync/status"); rec.Code != http.StatusOK {
		t.Errorf("status after limit = %d, want 200", rec.Code)
	}
}

// hubPublisher delivers sync completions straight to the hub.
type hubPublisher struct {
	hub *websocket.Hub
}

func (p hubPublisher) PublishSyncCompleted(_ context.Context, evt *models.SyncCompleted) error {
	p.hub.BroadcastSyncCompleted(evt)
	return nil
}

type staticFeeds struct {
	venues []models.RawVenue
	events []models.RawEvent
}

func (f *staticFeeds) FetchVenues(context.Context) (*models.VenueFeed, error) {
	return &models.VenueFeed{Venues: f.venues}, nil
}

func (f *staticFeeds) FetchEvents(context.Context) (*models.EventFeed, error) {
	return &models.EventFeed{Events: f.events}, nil
}

func threeVenueFeeds() *staticFeeds {
	feeds := &staticFeeds{}
	for v := 1; v <= 3; v++ {
		id := strconv.Itoa(v)
		feeds.venues = append(feeds.venues, models.RawVenue{
			ID: id, NameLocal: "場地", NameForeign: "Hall " + id, Latitude: "22.3", Longitude: "114.17",
		})
		for i := 0; i < v; i++ {
			eid := strconv.Itoa(v*100 + i)
			feeds.events = append(feeds.events, models.RawEvent{
				ID: eid, TitleLocal: "節目", TitleForeign: "Show " + eid, VenueID: id, Date: "2026-06-01T19:30:00",
			})
		}
	}
	return feeds
}

// TestRouter_SyncOverHTTP drives a real manager on the memory store through
// the API and checks the WebSocket notification.
func TestRouter_SyncOverHTTP(t *testing.T) {
	gw, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = gw.Close() })

	hub := websocket.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.RunWithContext(ctx) }()

	engine := syncengine.NewEngine(threeVenueFeeds(), gw, syncengine.EngineOptions{
		RetentionLimit: 2,
		Location:       time.UTC,
	})
	manager := syncengine.NewManager(engine, config.SyncConfig{RetentionLimit: 2, RetryAttempts: 0})
	manager.SetEventPublisher(hubPublisher{hub: hub})

	h := NewHandler(HandlerDeps{Sync: manager, Store: gw, Backend: store.BackendMemory, Hub: hub})
	srv := httptest.NewServer(newTestRouter(h, &ChiMiddlewareConfig{RateLimitDisabled: true}))
	t.Cleanup(srv.Close)

	post := func(path string) (*http.Response, apiEnvelope) {
		t.Helper()
		resp, err := http.Post(srv.URL+path, "application/json", nil)
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		defer resp.Body.Close()
		var env apiEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		return resp, env
	}

	// Refresh before anything was persisted
	resp, env := post("/api/v1/sync/refresh")
	if resp.StatusCode != http.StatusConflict || env.Error.Code != ErrCodeNotInitialized {
		t.Fatalf("refresh on empty store = %d %+v", resp.StatusCode, env.Error)
	}

	conn, _, err := gorillaws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/ws", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	resp, env = post("/api/v1/sync/initialize")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("initialize = %d %+v", resp.StatusCode, env.Error)
	}
	var report syncengine.BootstrapReport
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Skipped || report.VenuesRetained != 2 {
		t.Errorf("bootstrap report = %+v", report)
	}

	// running progress, then the completion, then completed progress
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var completed *models.SyncCompleted
	for completed == nil {
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if msg.Type == websocket.MessageTypeSyncCompleted {
			completed = &models.SyncCompleted{}
			if err := json.Unmarshal(msg.Data, completed); err != nil {
				t.Fatalf("decode sync_completed: %v", err)
			}
		}
	}
	if completed.Mode != "bootstrap" || completed.VenuesRetained != 2 || completed.CorrelationID == "" {
		t.Errorf("sync_completed = %+v", completed)
	}

	// A second initialize is a no-op
	_, env = post("/api/v1/sync/initialize")
	if err := json.Unmarshal(env.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.Skipped {
		t.Errorf("second initialize was not skipped: %+v", report)
	}

	resp, env = post("/api/v1/sync/refresh")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh = %d %+v", resp.StatusCode, env.Error)
	}
	var refresh syncengine.RefreshReport
	if err := json.Unmarshal(env.Data, &refresh); err != nil {
		t.Fatalf("decode refresh: %v", err)
	}
	if refresh.TotalRemaining != 5 || refresh.Inserted+refresh.Updated+refresh.Deleted != 0 {
		t.Errorf("refresh report = %+v, want 5 unchanged events", refresh)
	}

	statusResp, err := http.Get(srv.URL + "/api/v1/sync/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer statusResp.Body.Close()
	var statusEnv apiEnvelope
	if err := json.NewDecoder(statusResp.Body).Decode(&statusEnv); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	var st syncengine.Status
	if err := json.Unmarshal(statusEnv.Data, &st); err != nil {
		t.Fatalf("decode status data: %v", err)
	}
	if st.LastBootstrap == nil || st.LastRefresh == nil || st.LastSync == nil || st.InProgress {
		t.Errorf("status = %+v", st)
	}
}
