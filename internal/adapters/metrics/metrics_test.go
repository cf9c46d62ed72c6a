package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/users", http.MethodGet, "ok", time.Second)
	m.SessionCleared("expired")
	m.Submission("ok")
	m.InputBlocked("key")
}

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("/users", http.MethodGet, "ok", 20*time.Millisecond)
	m.ObserveRequest("/users", http.MethodGet, "ok", 30*time.Millisecond)
	m.ObserveRequest("/users", http.MethodGet, "unauthenticated", 0)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/users", http.MethodGet, "ok")); got != 2 {
		t.Errorf("expected 2 ok requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("/users", http.MethodGet, "unauthenticated")); got != 1 {
		t.Errorf("expected 1 unauthenticated request, got %v", got)
	}
	if got := testutil.CollectAndCount(m.duration); got != 1 {
		t.Errorf("expected one histogram series, got %d", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.SessionCleared("expired")
	m.Submission("ok")

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{"evalctl_session_clears_total", "evalctl_submissions_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestInputBlocked(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.InputBlocked("key")
	m.InputBlocked("key")
	m.InputBlocked("pointer")

	if got := testutil.ToFloat64(m.inputsBlocked.WithLabelValues("key")); got != 2 {
		t.Errorf("expected 2 blocked keys, got %v", got)
	}
	if got := testutil.ToFloat64(m.inputsBlocked.WithLabelValues("pointer")); got != 1 {
		t.Errorf("expected 1 blocked pointer input, got %v", got)
	}
}
