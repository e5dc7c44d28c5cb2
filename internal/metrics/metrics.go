package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/polkiloo/veo3store/internal/domain/model"
)

const namespace = "veo3store"

// Session check outcomes.
const (
	SessionCreated    = "created"
	SessionValid      = "valid"
	SessionInvalid    = "invalid"
	SessionStoreError = "store_error"
)

// Metrics owns the service collectors and the registry they are exposed from.
type Metrics struct {
	registry             *prometheus.Registry
	transitions          *prometheus.CounterVec
	conflicts            *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
	licenseIssuance      *prometheus.CounterVec
	sessionChecks        *prometheus.CounterVec
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Committed order status transitions.",
		}, []string{"from", "to"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transition_conflicts_total",
			Help:      "Transitions refused because the order was not in the expected status.",
		}, []string{"operation"}),
		notificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Order notifications that could not be delivered.",
		}, []string{"event"}),
		licenseIssuance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "license_issuance_total",
			Help:      "License issuance calls by result.",
		}, []string{"result"}),
		sessionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_checks_total",
			Help:      "Session registry operations by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transitions,
		m.conflicts,
		m.notificationFailures,
		m.licenseIssuance,
		m.sessionChecks,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) ObserveTransition(from, to model.OrderStatus) {
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Metrics) TransitionConflict(operation string) {
	m.conflicts.WithLabelValues(operation).Inc()
}

func (m *Metrics) NotificationFailed(event model.OrderEventType) {
	m.notificationFailures.WithLabelValues(string(event)).Inc()
}

func (m *Metrics) LicenseIssued(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.licenseIssuance.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionChecked(outcome string) {
	m.sessionChecks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry exposes the registry for scraping and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
