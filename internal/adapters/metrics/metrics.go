// Package metrics exposes the client's Prometheus collectors. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "evalctl"

type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	sessionClears *prometheus.CounterVec
	submissions   *prometheus.CounterVec
	inputsBlocked *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests issued to the evaluation service by route, method and outcome.",
		}, []string{"route", "method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of requests that reached the network.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		sessionClears: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_clears_total",
			Help:      "Sessions wiped by reason.",
		}, []string{"reason"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Evaluation submission attempts by result.",
		}, []string{"result"}),
		inputsBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inputs_blocked_total",
			Help:      "Form inputs consumed after the evaluation was submitted, by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.requests, m.duration, m.sessionClears, m.submissions, m.inputsBlocked)
	return m
}

// ObserveRequest records one request. A zero elapsed means the request
// never reached the network.
func (m *Metrics) ObserveRequest(route, method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, outcome).Inc()
	if elapsed > 0 {
		m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) SessionCleared(reason string) {
	if m == nil {
		return
	}
	m.sessionClears.WithLabelValues(reason).Inc()
}

func (m *Metrics) Submission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

func (m *Metrics) InputBlocked(kind string) {
	if m == nil {
		return
	}
	m.inputsBlocked.WithLabelValues(kind).Inc()
}

// Handler serves the gatherer's metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
