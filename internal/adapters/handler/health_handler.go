// Package handler serves the client's diagnostics endpoints while a
// long-running command (the respondent UI or the dashboard) is open.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/adapters/metrics"
)

const checkTimeout = 5 * time.Second

type HealthHandler struct {
	apiBaseURL  string
	httpClient  *http.Client
	redisClient *redis.Client
	breaker     *gobreaker.CircuitBreaker
	logger      *zap.Logger
	startTime   time.Time
	version     string
}

// HealthOptions wires the dependencies the readiness probe checks. Redis
// and Breaker are optional; a nil one is left out of the report.
type HealthOptions struct {
	APIBaseURL string
	HTTPClient *http.Client
	Redis      *redis.Client
	Breaker    *gobreaker.CircuitBreaker
	Version    string
	Logger     *zap.Logger
}

func NewHealthHandler(opts HealthOptions) *HealthHandler {
	version := opts.Version
	if version == "" {
		version = "unknown"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: checkTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		apiBaseURL:  opts.APIBaseURL,
		httpClient:  httpClient,
		redisClient: opts.Redis,
		breaker:     opts.Breaker,
		logger:      logger,
		startTime:   time.Now(),
		version:     version,
	}
}

type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is the liveness check: the process is running.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.write(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	})
}

// Ready reports whether the evaluation service answers, the session store
// is reachable and the transport breaker is closed.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	checks := map[string]Check{"backend": h.checkBackend(r.Context())}
	if h.redisClient != nil {
		checks["redis"] = h.checkRedis(r.Context())
	}
	if h.breaker != nil {
		checks["circuit_breaker"] = h.checkBreaker()
	}

	status := "UP"
	httpStatus := http.StatusOK
	for _, check := range checks {
		if check.Status != "UP" {
			status = "DOWN"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	h.write(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    checks,
	})
}

func (h *HealthHandler) write(w http.ResponseWriter, status int, body HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode health response", zap.Error(err))
	}
}

// checkBackend treats any HTTP answer as UP; only a failed round trip is
// DOWN.
func (h *HealthHandler) checkBackend(parent context.Context) Check {
	ctx, cancel := context.WithTimeout(parent, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.apiBaseURL+"/", nil)
	if err != nil {
		return Check{Status: "DOWN", Message: "Invalid API base URL"}
	}
	res, err := h.httpClient.Do(req)
	if err != nil {
		return Check{Status: "DOWN", Message: "Cannot connect to evaluation service"}
	}
	res.Body.Close()
	return Check{Status: "UP"}
}

func (h *HealthHandler) checkRedis(parent context.Context) Check {
	ctx, cancel := context.WithTimeout(parent, checkTimeout)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		return Check{Status: "DOWN", Message: "Cannot connect to Redis"}
	}
	return Check{Status: "UP"}
}

func (h *HealthHandler) checkBreaker() Check {
	if state := h.breaker.State(); state == gobreaker.StateOpen {
		return Check{Status: "DOWN", Message: "Circuit breaker " + state.String()}
	}
	return Check{Status: "UP"}
}

// NewMux routes the health probes and the metrics endpoint.
func NewMux(h *HealthHandler, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/health/live", h.Health)
	mux.HandleFunc("/health/ready", h.Ready)
	mux.Handle("/metrics", metrics.Handler(gatherer))
	return mux
}

// Serve runs the diagnostics server on addr until ctx is done.
func Serve(ctx context.Context, addr string, mux http.Handler, logger *zap.Logger) {
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: checkTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving diagnostics", zap.String("address", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("diagnostics server stopped", zap.Error(err))
	}
}
