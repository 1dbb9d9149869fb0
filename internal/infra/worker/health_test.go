package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestHealthServer_Liveness(t *testing.T) {
	server := NewHealthServer(":0", testLogger(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.handleLiveness(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("liveness status = %d, want 200", rec.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Scraping {
		t.Error("scraping = true without a status callback")
	}
}

func TestHealthServer_Readiness_NotReady(t *testing.T) {
	server := NewHealthServer(":0", testLogger(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	server.handleReadiness(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want 503 before SetReady", rec.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Status != "not ready" {
		t.Errorf("status = %q, want 'not ready'", resp.Status)
	}
}

func TestHealthServer_Readiness_Ready(t *testing.T) {
	server := NewHealthServer(":0", testLogger(), nil)
	server.SetReady(true)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()

	server.handleReadiness(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("readiness status = %d, want 200 after SetReady", rec.Code)
	}
}

func TestHealthServer_Readiness_Transition(t *testing.T) {
	server := NewHealthServer(":0", testLogger(), nil)

	check := func(wantCode int) {
		t.Helper()
		rec := httptest.NewRecorder()
		server.handleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != wantCode {
			t.Errorf("readiness status = %d, want %d", rec.Code, wantCode)
		}
	}

	check(http.StatusServiceUnavailable)
	server.SetReady(true)
	check(http.StatusOK)
	server.SetReady(false)
	check(http.StatusServiceUnavailable)
}

func TestHealthServer_ReportsScrapingStatus(t *testing.T) {
	scraping := false
	server := NewHealthServer(":0", testLogger(), func() bool { return scraping })
	server.SetReady(true)

	get := func() healthResponse {
		t.Helper()
		rec := httptest.NewRecorder()
		server.handleLiveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		var resp healthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
		return resp
	}

	if get().Scraping {
		t.Error("scraping = true while idle")
	}

	scraping = true
	if !get().Scraping {
		t.Error("scraping = false while a run is executing")
	}
}

func TestHealthServer_GracefulShutdown(t *testing.T) {
	server := NewHealthServer("127.0.0.1:0", testLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	// Give the listener a moment to come up, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		if err != http.ErrServerClosed {
			t.Errorf("Start() error = %v, want http.ErrServerClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestNewHealthServer(t *testing.T) {
	server := NewHealthServer(":9091", testLogger(), nil)

	if server == nil {
		t.Fatal("NewHealthServer returned nil")
	}
	if server.addr != ":9091" {
		t.Errorf("addr = %q, want :9091", server.addr)
	}
	if server.ready.Load() {
		t.Error("new server should start as not ready")
	}
}
