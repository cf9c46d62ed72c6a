// Package transport is the single HTTP path to the evaluation service.
//
// Every request makes exactly one attempt. Authenticated requests read the
// credential from the session store at call time; a request without a
// credential never touches the network. A 401 or 403 on an authenticated
// request wipes the session, emits a one-time notice and is reported as
// *domain.AuthError without decoding the body. Consecutive network and 5xx
// failures open a circuit breaker so a dead backend fails fast.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/adapters/metrics"
	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

// SessionExpiredNotice is shown once when the server rejects the session.
const SessionExpiredNotice = "Session expired. Please login again."

const (
	DefaultTimeout = 15 * time.Second

	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 4 << 20
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Store      ports.SessionStore
	Notifier   ports.Notifier

	// Breaker is optional. Build it with CountsAsSuccess as its
	// IsSuccessful hook so client errors do not trip it.
	Breaker *gobreaker.CircuitBreaker
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	store      ports.SessionStore
	notifier   ports.Notifier
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

var _ ports.Transport = (*Client)(nil)

func New(opts Options) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		store:      opts.Store,
		notifier:   opts.Notifier,
		breaker:    opts.Breaker,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if client.timeout <= 0 {
		client.timeout = DefaultTimeout
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{}
	}
	if client.logger == nil {
		client.logger = zap.NewNop()
	}
	return client
}

// Do sends req with the session's bearer credential and decodes a 2xx body
// into out.
func (c *Client) Do(ctx context.Context, req ports.Request, out any) error {
	route := routeOf(req)

	session, err := c.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("%s: reading session: %w", route, err)
	}
	if !session.Authenticated() {
		c.metrics.ObserveRequest(route, req.Method, "no_session", 0)
		return &domain.AuthError{Reason: "not logged in"}
	}
	return c.send(ctx, req, session.Token, out)
}

// DoPublic sends req without a credential. A 401 or 403 here is an
// ordinary *domain.HTTPError and leaves the session alone.
func (c *Client) DoPublic(ctx context.Context, req ports.Request, out any) error {
	return c.send(ctx, req, "", out)
}

type response struct {
	status int
	body   []byte
}

func (c *Client) send(ctx context.Context, req ports.Request, token string, out any) error {
	route := routeOf(req)
	requestID := uuid.NewString()

	var payload []byte
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%s: encoding request: %w", route, err)
		}
		payload = data
	}

	started := time.Now()
	res, err := c.execute(func() (response, error) {
		return c.roundTrip(ctx, req, token, requestID, payload)
	})
	elapsed := time.Since(started)

	if err != nil {
		outcome := outcomeOf(err)
		if outcome == "unavailable" {
			elapsed = 0
		}
		c.metrics.ObserveRequest(route, req.Method, outcome, elapsed)
		c.logger.Debug("request failed",
			zap.String("request_id", requestID),
			zap.String("method", req.Method),
			zap.String("route", route),
			zap.String("outcome", outcome),
			zap.Error(err))
		return err
	}

	c.logger.Debug("request completed",
		zap.String("request_id", requestID),
		zap.String("method", req.Method),
		zap.String("route", route),
		zap.Int("status", res.status),
		zap.Duration("elapsed", elapsed))

	if token != "" && (res.status == http.StatusUnauthorized || res.status == http.StatusForbidden) {
		c.metrics.ObserveRequest(route, req.Method, "unauthorized", elapsed)
		c.expireSession(ctx, route, res.status)
		return &domain.AuthError{Status: res.status, Reason: "session rejected by server"}
	}
	if res.status < 200 || res.status > 299 {
		c.metrics.ObserveRequest(route, req.Method, "client_error", elapsed)
		return &domain.HTTPError{Status: res.status, Detail: errorDetail(res.body)}
	}

	if out != nil && len(bytes.TrimSpace(res.body)) > 0 {
		if err := json.Unmarshal(res.body, out); err != nil {
			c.metrics.ObserveRequest(route, req.Method, "parse_error", elapsed)
			return &domain.ParseError{What: route + " response", Err: err}
		}
	}
	c.metrics.ObserveRequest(route, req.Method, "ok", elapsed)
	return nil
}

func (c *Client) execute(call func() (response, error)) (response, error) {
	if c.breaker == nil {
		return call()
	}
	result, err := c.breaker.Execute(func() (interface{}, error) {
		res, err := call()
		return res, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return response{}, domain.ErrBackendUnavailable
	}
	res, _ := result.(response)
	return res, err
}

// roundTrip performs the single attempt. 5xx responses come back as errors
// so the breaker counts them.
func (c *Client) roundTrip(ctx context.Context, req ports.Request, token, requestID string, payload []byte) (response, error) {
	route := routeOf(req)

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return response{}, fmt.Errorf("%s: building request: %w", route, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpRes, err := c.httpClient.Do(httpReq)
	if err != nil {
		return response{}, c.classify(ctx, attemptCtx, route, err)
	}
	defer httpRes.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpRes.Body, maxBodyBytes))
	if err != nil {
		return response{}, c.classify(ctx, attemptCtx, route, err)
	}

	res := response{status: httpRes.StatusCode, body: data}
	if res.status >= http.StatusInternalServerError {
		return res, &domain.HTTPError{Status: res.status, Detail: errorDetail(data)}
	}
	return res, nil
}

func (c *Client) classify(parent, attempt context.Context, route string, err error) error {
	switch {
	case parent.Err() != nil:
		return fmt.Errorf("%s: %w", route, parent.Err())
	case errors.Is(attempt.Err(), context.DeadlineExceeded):
		return &domain.TimeoutError{Route: route, After: c.timeout}
	default:
		return &domain.NetworkError{Route: route, Err: err}
	}
}

// expireSession clears the store even if the caller's context is already
// done, and notifies only when this call actually removed a session.
func (c *Client) expireSession(ctx context.Context, route string, status int) {
	cleared, err := c.store.Clear(context.WithoutCancel(ctx))
	if err != nil {
		c.logger.Error("failed to clear rejected session", zap.String("route", route), zap.Error(err))
		return
	}
	if !cleared {
		return
	}
	c.metrics.SessionCleared("rejected")
	c.logger.Info("session rejected by server", zap.String("route", route), zap.Int("status", status))
	if c.notifier != nil {
		c.notifier.Notify(SessionExpiredNotice)
	}
}

// CountsAsSuccess is the breaker's IsSuccessful hook: only network
// failures, timeouts and 5xx responses count against the backend.
func CountsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var netErr *domain.NetworkError
	var timeoutErr *domain.TimeoutError
	if errors.As(err, &netErr) || errors.As(err, &timeoutErr) {
		return false
	}
	return domain.HTTPStatus(err) < http.StatusInternalServerError
}

func outcomeOf(err error) string {
	var netErr *domain.NetworkError
	var timeoutErr *domain.TimeoutError
	switch {
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "unavailable"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &netErr):
		return "network_error"
	case domain.HTTPStatus(err) >= http.StatusInternalServerError:
		return "server_error"
	default:
		return "canceled"
	}
}

// errorDetail extracts the server's {"detail": ...} message. Validation
// failures carry a list of objects; their first msg is used.
func errorDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}

func routeOf(req ports.Request) string {
	if req.Route != "" {
		return req.Route
	}
	return req.Path
}
