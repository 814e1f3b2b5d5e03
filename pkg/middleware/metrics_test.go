package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/toastd/pkg/toast"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsHandler_LabelsByRoutePattern(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/toasts/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "missing" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	})

	for _, path := range []string{"/api/toasts/a", "/api/toasts/b", "/api/toasts/missing", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("/api/toasts/{id}", "GET", "200")); got != 2 {
		t.Errorf("requests_total(200) = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("/api/toasts/{id}", "GET", "404")); got != 1 {
		t.Errorf("requests_total(404) = %v, want 1", got)
	}
	if got := metricHistogramCount(t, m.requestDuration.WithLabelValues("/api/toasts/{id}", "GET")); got != 3 {
		t.Errorf("request_duration count = %v, want 3", got)
	}
	if got := metricCounterValue(t, m.requestsTotal.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("requests_total(unmatched) = %v, want 1", got)
	}
}

func TestMetricsObserver_Lifecycle(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	obs := m.Observer()

	created := time.Unix(100, 0)
	s := toast.Snapshot{ID: "t1", Type: toast.TypeError, CreatedAt: created}

	obs.Observe(toast.Event{Kind: toast.EventShown, Toast: s, At: created})
	obs.Observe(toast.Event{Kind: toast.EventShown, Toast: toast.Snapshot{ID: "t2", Type: toast.TypeInfo, CreatedAt: created}, At: created})
	if got := metricGaugeValue(t, m.visible); got != 2 {
		t.Fatalf("visible = %v, want 2", got)
	}

	obs.Observe(toast.Event{Kind: toast.EventAction, Toast: s, At: created})
	obs.Observe(toast.Event{Kind: toast.EventHidden, Toast: s, At: created.Add(6 * time.Second)})
	obs.Observe(toast.Event{Kind: toast.EventClosed, Toast: s, At: created.Add(6300 * time.Millisecond)})
	obs.Observe(toast.Event{Kind: toast.EventRemoved, Toast: toast.Snapshot{ID: "t2", Type: toast.TypeInfo, CreatedAt: created}, At: created.Add(time.Second)})

	if got := metricCounterValue(t, m.shownTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("shown_total(error) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.actionsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("actions_total(error) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.closedTotal.WithLabelValues("error", "closed")); got != 1 {
		t.Errorf("closed_total(error, closed) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.closedTotal.WithLabelValues("info", "removed")); got != 1 {
		t.Errorf("closed_total(info, removed) = %v, want 1", got)
	}
	if got := metricGaugeValue(t, m.visible); got != 0 {
		t.Errorf("visible = %v, want 0", got)
	}
	if got := metricHistogramCount(t, m.lifetime); got != 2 {
		t.Errorf("lifetime count = %v, want 2", got)
	}
}

func TestMetricsWebSocket(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.WebSocketConnected()
	m.WebSocketConnected()
	m.WebSocketDisconnected()
	m.WebSocketDropped()

	if got := metricGaugeValue(t, m.wsClients); got != 1 {
		t.Errorf("websocket_clients = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.wsDropped); got != 1 {
		t.Errorf("websocket_dropped_total = %v, want 1", got)
	}
}

func TestMetricsWithHost(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	host := toast.NewHost(&toast.HostConfig{Observers: []toast.Observer{m.Observer()}})
	defer host.Close()

	id, err := host.Success("Saved")
	if err != nil {
		t.Fatal(err)
	}
	if err := host.Remove(id); err != nil {
		t.Fatal(err)
	}

	if got := metricCounterValue(t, m.shownTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("shown_total(success) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.closedTotal.WithLabelValues("success", "removed")); got != 1 {
		t.Errorf("closed_total(success, removed) = %v, want 1", got)
	}
}
