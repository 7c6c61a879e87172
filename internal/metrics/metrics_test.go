package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExportCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveHTTP(http.MethodGet, "/orders/:id", 200, 20*time.Millisecond)
	m.ObserveHTTP(http.MethodGet, "", 404, time.Millisecond)
	m.IncAuthEvent("login", "failure")
	m.IncAuthEvent("login", "failure")
	m.IncOrdersCreated()
	m.IncMailTask("order:status_email", "sent")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := counterValue(t, mfs, "http_requests_total", map[string]string{"route": "/orders/:id", "status": "200"}); got != 1 {
		t.Fatalf("http_requests_total want 1 got %f", got)
	}
	if got := counterValue(t, mfs, "http_requests_total", map[string]string{"route": "unknown", "status": "404"}); got != 1 {
		t.Fatalf("unmatched routes should be labelled unknown, got %f", got)
	}
	if got := counterValue(t, mfs, "auth_events_total", map[string]string{"event": "login", "outcome": "failure"}); got != 2 {
		t.Fatalf("auth_events_total want 2 got %f", got)
	}
	if got := counterValue(t, mfs, "orders_created_total", nil); got != 1 {
		t.Fatalf("orders_created_total want 1 got %f", got)
	}
	if got := counterValue(t, mfs, "mail_tasks_total", map[string]string{"task": "order:status_email"}); got != 1 {
		t.Fatalf("mail_tasks_total want 1 got %f", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveHTTP(http.MethodGet, "/", 200, time.Second)
	m.IncAuthEvent("login", "success")
	m.IncOrdersCreated()
	m.IncMailTask("x", "y")
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.IncOrdersCreated()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "orders_created_total 1") {
		t.Fatalf("exposition missing counter: %s", w.Body.String())
	}
}

func counterValue(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	for name, value := range want {
		found := false
		for _, pair := range pairs {
			if pair.GetName() == name && pair.GetValue() == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
