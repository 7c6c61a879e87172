package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	gatherer      prometheus.Gatherer
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	authEvents    *prometheus.CounterVec
	ordersCreated prometheus.Counter
	mailTasks     *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	authEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_events_total",
		Help: "Authentication events by kind and outcome.",
	}, []string{"event", "outcome"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders committed.",
	})
	mailTasks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mail_tasks_total",
		Help: "Mail tasks handled by the worker.",
	}, []string{"task", "outcome"})
	reg.MustRegister(httpRequests, httpDuration, authEvents, ordersCreated, mailTasks)
	return &Metrics{
		gatherer:      reg,
		httpRequests:  httpRequests,
		httpDuration:  httpDuration,
		authEvents:    authEvents,
		ordersCreated: ordersCreated,
		mailTasks:     mailTasks,
	}
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncAuthEvent counts a register, login, refresh or reset attempt.
func (m *Metrics) IncAuthEvent(event, outcome string) {
	if m == nil || m.authEvents == nil {
		return
	}
	m.authEvents.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}

// IncOrdersCreated counts a committed order.
func (m *Metrics) IncOrdersCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncMailTask counts a processed mail task.
func (m *Metrics) IncMailTask(task, outcome string) {
	if m == nil || m.mailTasks == nil {
		return
	}
	m.mailTasks.WithLabelValues(normalizeLabel(task), normalizeLabel(outcome)).Inc()
}

// Handler exposes the registry in the text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
