package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AchilleasB/evaluation-client/internal/adapters/metrics"
	"github.com/AchilleasB/evaluation-client/internal/adapters/transport"
	"github.com/AchilleasB/evaluation-client/internal/config"
	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
	"github.com/AchilleasB/evaluation-client/internal/mocks"
)

type fixture struct {
	server   *httptest.Server
	hits     *atomic.Int32
	store    *mocks.MockSessionStore
	notifier *mocks.MockNotifier
	client   *transport.Client
}

func newFixture(t *testing.T, handler http.HandlerFunc, configure func(*transport.Options)) *fixture {
	t.Helper()

	hits := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	f := &fixture{
		server:   server,
		hits:     hits,
		store:    mocks.NewMockSessionStore(),
		notifier: &mocks.MockNotifier{},
	}
	opts := transport.Options{
		BaseURL:  server.URL,
		Timeout:  time.Second,
		Store:    f.store,
		Notifier: f.notifier,
	}
	if configure != nil {
		configure(&opts)
	}
	f.client = transport.New(opts)
	return f
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestDo_WithoutSessionSendsNothing(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []string{})
	}, nil)

	err := f.client.Do(context.Background(), ports.Request{Method: http.MethodGet, Path: "/users"}, nil)

	if !domain.IsAuth(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if got := f.hits.Load(); got != 0 {
		t.Errorf("expected no requests, got %d", got)
	}
}

func TestDo_AttachesCredentialAndDecodes(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType string
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotContentType = r.Header.Get("Content-Type")
		writeJSON(w, http.StatusOK, map[string]string{"name": "Finance"})
	}, nil)
	f.store.Seed(domain.Session{Token: "tok-123", Role: domain.RoleAdmin})

	var out struct {
		Name string `json:"name"`
	}
	err := f.client.Do(context.Background(), ports.Request{
		Method: http.MethodPost,
		Path:   "/departments",
		Body:   domain.DepartmentCreate{Name: "Finance"},
	}, &out)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("expected bearer credential, got %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("expected a request id")
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}
	if out.Name != "Finance" {
		t.Errorf("expected decoded body, got %+v", out)
	}
}

func TestDo_RejectedSessionIsCleared(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, status, map[string]string{"detail": "Not authenticated"})
			}, nil)
			f.store.Seed(domain.Session{Token: "tok", Role: domain.RoleHead})

			var out []domain.Questionnaire
			err := f.client.Do(context.Background(), ports.Request{Method: http.MethodGet, Path: "/questionnaires"}, &out)

			var authErr *domain.AuthError
			if !errors.As(err, &authErr) || authErr.Status != status {
				t.Fatalf("expected AuthError with status %d, got %v", status, err)
			}
			if f.store.Current().Authenticated() {
				t.Error("expected session to be cleared")
			}
			if f.notifier.Count() != 1 || f.notifier.Messages[0] != transport.SessionExpiredNotice {
				t.Errorf("expected one expiry notice, got %v", f.notifier.Messages)
			}
			if out != nil {
				t.Error("expected body not to be decoded")
			}
		})
	}
}

func TestDo_ConcurrentRejectionsNotifyOnce(t *testing.T) {
	// Hold every request until all are in flight so each one carries the
	// credential before any rejection lands.
	var ready sync.WaitGroup
	ready.Add(3)
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		ready.Done()
		ready.Wait()
		w.WriteHeader(http.StatusUnauthorized)
	}, nil)
	f.store.Seed(domain.Session{Token: "tok", Role: domain.RoleAdmin})

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.client.Do(context.Background(), ports.Request{Method: http.MethodGet, Path: "/users"}, nil)
		}()
	}
	wg.Wait()

	if got := f.notifier.Count(); got != 1 {
		t.Errorf("expected exactly one notice, got %d", got)
	}
}

func TestDoPublic_UnauthorizedIsHTTPError(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("public request carried a credential")
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	}, nil)
	f.store.Seed(domain.Session{Token: "tok", Role: domain.RoleAdmin})

	err := f.client.DoPublic(context.Background(), ports.Request{
		Method: http.MethodPost,
		Path:   "/login",
		Body:   domain.Credentials{Username: "a", Password: "b"},
	}, nil)

	var httpErr *domain.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Status != http.StatusUnauthorized || httpErr.Detail != "Invalid credentials" {
		t.Errorf("unexpected error: %+v", httpErr)
	}
	if !f.store.Current().Authenticated() {
		t.Error("public rejection must not clear the session")
	}
	if f.notifier.Count() != 0 {
		t.Error("public rejection must not notify")
	}
}

func TestDo_ErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantDetail string
	}{
		{name: "string_detail", body: map[string]string{"detail": "Cannot delete admin"}, wantDetail: "Cannot delete admin"},
		{name: "validation_detail", body: map[string]any{"detail": []map[string]string{{"msg": "field required"}}}, wantDetail: "field required"},
		{name: "no_detail", body: map[string]string{"error": "x"}, wantDetail: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, tt.body)
			}, nil)
			f.store.Seed(domain.Session{Token: "tok", Role: domain.RoleAdmin})

			err := f.client.Do(context.Background(), ports.Request{Method: http.MethodDelete, Path: "/users/1"}, nil)

			var httpErr *domain.HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if httpErr.Detail != tt.wantDetail {
				t.Errorf("expected detail %q, got %q", tt.wantDetail, httpErr.Detail)
			}
			if !f.store.Current().Authenticated() {
				t.Error("a 400 must not clear the session")
			}
		})
	}
}

func TestDo_MalformedBodyIsParseError(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>"))
	}, nil)
	f.store.Seed(domain.Session{Token: "tok", Role: domain.RoleAdmin})

	var out []domain.Account
	err := f.client.Do(context.Background(), ports.Request{Method: http.MethodGet, Path: "/users"}, &out)

	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestDo_Timeout(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, func(opts *transport.Options) {
		opts.Timeout = 20 * time.Millisecond
	})
	f.store.Seed(domain.Session{Token: "tok", Role: domain.RoleAdmin})

	err := f.client.Do(context.Background(), ports.Request{Method: http.MethodGet, Path: "/users"}, nil)

	var timeoutErr *domain.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if !domain.IsUnreachable(err) {
		t.Error("expected timeout to count as unreachable")
	}
	if got := f.hits.Load(); got != 1 {
		t.Errorf("expected exactly one attempt, got %d", got)
	}
}

func TestDo_NetworkError(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {}, nil)
	f.server.Close()

	err := f.client.DoPublic(context.Background(), ports.Request{Method: http.MethodGet, Path: "/public/active-questionnaire"}, nil)

	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}

func TestDo_BreakerOpensOnServerErrors(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
	}, func(opts *transport.Options) {
		opts.Breaker = config.NewCircuitBreaker("Evaluation-API", nil, transport.CountsAsSuccess)
	})
	f.store.Seed(domain.Session{Token: "tok", Role: domain.RoleAdmin})

	req := ports.Request{Method: http.MethodGet, Path: "/users"}
	for i := 0; i < 3; i++ {
		if status := domain.HTTPStatus(f.client.Do(context.Background(), req, nil)); status != http.StatusInternalServerError {
			t.Fatalf("attempt %d: expected 500, got %d", i, status)
		}
	}

	err := f.client.Do(context.Background(), req, nil)

	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if got := f.hits.Load(); got != 3 {
		t.Errorf("expected open breaker to skip the network, got %d requests", got)
	}
}

func TestDo_ClientErrorsDoNotTripBreaker(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
	}, func(opts *transport.Options) {
		opts.Breaker = config.NewCircuitBreaker("Evaluation-API", nil, transport.CountsAsSuccess)
	})
	f.store.Seed(domain.Session{Token: "tok", Role: domain.RoleAdmin})

	req := ports.Request{Method: http.MethodPut, Path: "/departments/1/assign-head"}
	for i := 0; i < 5; i++ {
		if status := domain.HTTPStatus(f.client.Do(context.Background(), req, nil)); status != http.StatusNotFound {
			t.Fatalf("attempt %d: expected 404, got %d", i, status)
		}
	}
}

func TestDo_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []string{})
	}, func(opts *transport.Options) {
		opts.Metrics = metrics.New(reg)
	})
	f.store.Seed(domain.Session{Token: "tok", Role: domain.RoleAdmin})

	_ = f.client.Do(context.Background(), ports.Request{Method: http.MethodGet, Path: "/users/7", Route: "/users/{id}"}, nil)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, family := range families {
		if family.GetName() != "evalctl_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" && label.GetValue() == "/users/{id}" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("expected request counter labelled with the route template")
	}
}

func TestCountsAsSuccess(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: true},
		{name: "not_found", err: &domain.HTTPError{Status: 404}, want: true},
		{name: "server_error", err: &domain.HTTPError{Status: 503}, want: false},
		{name: "timeout", err: &domain.TimeoutError{Route: "/users"}, want: false},
		{name: "network", err: &domain.NetworkError{Route: "/users", Err: errors.New("refused")}, want: false},
		{name: "canceled", err: context.Canceled, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transport.CountsAsSuccess(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
