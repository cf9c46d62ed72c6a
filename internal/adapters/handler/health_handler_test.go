package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AchilleasB/evaluation-client/internal/adapters/metrics"
	"github.com/AchilleasB/evaluation-client/internal/config"
)

func TestHealth(t *testing.T) {
	h := NewHealthHandler(HealthOptions{APIBaseURL: "http://127.0.0.1:1", Version: "1.2.0"})

	tests := []struct {
		name       string
		method     string
		wantStatus int
	}{
		{name: "get", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "post_not_allowed", method: http.MethodPost, wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(tt.method, "/health", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestReady(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer backend.Close()

	tripped := config.NewCircuitBreaker("Evaluation-API", nil, nil)
	for i := 0; i < 3; i++ {
		_, _ = tripped.Execute(func() (interface{}, error) { return nil, errors.New("down") })
	}

	tests := []struct {
		name       string
		opts       HealthOptions
		wantStatus int
		wantCheck  string
	}{
		{
			name:       "backend_answers",
			opts:       HealthOptions{APIBaseURL: backend.URL},
			wantStatus: http.StatusOK,
			wantCheck:  "backend",
		},
		{
			name:       "backend_unreachable",
			opts:       HealthOptions{APIBaseURL: "http://127.0.0.1:1"},
			wantStatus: http.StatusServiceUnavailable,
			wantCheck:  "backend",
		},
		{
			name:       "breaker_open",
			opts:       HealthOptions{APIBaseURL: backend.URL, Breaker: tripped},
			wantStatus: http.StatusServiceUnavailable,
			wantCheck:  "circuit_breaker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.opts)
			rec := httptest.NewRecorder()

			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var body HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if _, ok := body.Checks[tt.wantCheck]; !ok {
				t.Errorf("expected %s check in %v", tt.wantCheck, body.Checks)
			}
		})
	}
}

func TestNewMux_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Submission("ok")

	server := httptest.NewServer(NewMux(NewHealthHandler(HealthOptions{}), reg))
	defer server.Close()

	res, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("fetching metrics: %v", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("reading metrics: %v", err)
	}
	if !strings.Contains(string(data), "evalctl_submissions_total") {
		t.Error("expected submission counter in metrics output")
	}
}
