package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/toastd/pkg/toast"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "toastd").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// LifetimeBuckets are the histogram buckets for toast lifetime.
	LifetimeBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the request duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:       "toastd",
		Buckets:         prometheus.DefBuckets,
		LifetimeBuckets: []float64{0.5, 1, 2, 4, 6, 10, 30, 60, 300},
		Registry:        prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for one registry.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	shownTotal      *prometheus.CounterVec
	closedTotal     *prometheus.CounterVec
	actionsTotal    *prometheus.CounterVec
	visible         prometheus.Gauge
	lifetime        prometheus.Histogram
	wsClients       prometheus.Gauge
	wsDropped       prometheus.Counter
}

// NewMetrics registers the toastd collectors and returns them.
// Registering twice on the same registry panics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "method", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route", "method"}),

		shownTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_shown_total",
			Help:        "Total number of toasts mounted",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		closedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_closed_total",
			Help:        "Total number of toasts unmounted, by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "reason"}),

		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_actions_total",
			Help:        "Total number of toast action activations",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		visible: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toasts_visible",
			Help:        "Number of toasts currently mounted",
			ConstLabels: config.ConstLabels,
		}),

		lifetime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "toast_lifetime_seconds",
			Help:        "Time from mount to unmount in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.LifetimeBuckets,
		}),

		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_clients",
			Help:        "Number of connected WebSocket clients",
			ConstLabels: config.ConstLabels,
		}),

		wsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "websocket_dropped_total",
			Help:        "Total number of WebSocket clients dropped for falling behind",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Handler is chi-compatible middleware that records request count and
// latency labelled by route pattern.
func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := routePattern(r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		m.requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}

// Observer returns a toast.Observer that records lifecycle metrics.
func (m *Metrics) Observer() toast.Observer {
	return toast.ObserverFunc(m.observe)
}

func (m *Metrics) observe(ev toast.Event) {
	typ := string(ev.Toast.Type)
	switch ev.Kind {
	case toast.EventShown:
		m.shownTotal.WithLabelValues(typ).Inc()
		m.visible.Inc()
	case toast.EventClosed, toast.EventRemoved:
		m.closedTotal.WithLabelValues(typ, string(ev.Kind)).Inc()
		m.visible.Dec()
		if !ev.Toast.CreatedAt.IsZero() {
			m.lifetime.Observe(ev.At.Sub(ev.Toast.CreatedAt).Seconds())
		}
	case toast.EventAction:
		m.actionsTotal.WithLabelValues(typ).Inc()
	}
}

// WebSocketConnected records a new WebSocket client.
func (m *Metrics) WebSocketConnected() { m.wsClients.Inc() }

// WebSocketDisconnected records a WebSocket client leaving.
func (m *Metrics) WebSocketDisconnected() { m.wsClients.Dec() }

// WebSocketDropped records a client dropped for a full send buffer.
func (m *Metrics) WebSocketDropped() { m.wsDropped.Inc() }

// routePattern returns the matched chi route, or "unmatched" so raw paths
// never become label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
