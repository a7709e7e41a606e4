package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mfeld/queuebridge/internal/config"
)

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	healthHandler(rec, req)

	// Check status code
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	// Check content type
	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	// Parse response body
	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	// Check response fields
	if response["status"] != "ok" {
		t.Errorf("expected status ok, got %s", response["status"])
	}
	if response["service"] != "queuebridge" {
		t.Errorf("expected service queuebridge, got %s", response["service"])
	}
}

func TestBuildTransport(t *testing.T) {
	cfg := &config.Config{NotifyMode: "log"}
	tr, err := buildTransport(cfg)
	if err != nil {
		t.Fatalf("log transport should always build: %v", err)
	}
	tr.Close()

	cfg.NotifyMode = "carrier-pigeon"
	if _, err := buildTransport(cfg); err == nil {
		t.Error("expected error for unknown notify mode")
	}
}
