// Package middleware provides observability for toastd.
//
// It has two halves. HTTP middleware for a chi router:
//
//	m := middleware.NewMetrics(middleware.WithNamespace("toastd"))
//	r.Use(m.Handler)
//	r.Use(middleware.OpenTelemetry())
//
// and toast.Observer implementations that turn host lifecycle events into
// metrics and spans:
//
//	host := toast.NewHost(&toast.HostConfig{
//	    Observers: []toast.Observer{m.Observer(), middleware.TracingObserver()},
//	})
//
// # Prometheus Metrics
//
//   - toastd_http_requests_total: requests by route, method and status
//   - toastd_http_request_duration_seconds: request latency by route
//   - toastd_toasts_shown_total: toasts mounted, by type
//   - toastd_toasts_closed_total: toasts unmounted, by type and reason
//   - toastd_toasts_actions_total: action activations, by type
//   - toastd_toasts_visible: toasts currently mounted
//   - toastd_toast_lifetime_seconds: time from mount to unmount
//   - toastd_websocket_clients: connected WebSocket clients
//   - toastd_websocket_dropped_total: clients dropped for being slow
//
// # OpenTelemetry
//
// OpenTelemetry starts one server span per request, named by method and
// route pattern, continuing any trace propagated in the request headers.
// TracingObserver records one short span per lifecycle event. Both use the
// global tracer provider unless WithTracerProvider is given.
package middleware
