package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/toastd/pkg/loop"
)

// Config holds server configuration.
type Config struct {
	// Address is the listen address. Default: ":3000".
	Address string

	// ReadHeaderTimeout bounds reading request headers. Default: 5s.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration

	// AllowedOrigins restricts WebSocket origins. Empty allows any origin.
	AllowedOrigins []string

	// SendBuffer is the per-client outgoing message buffer. Default: 64.
	SendBuffer int

	// WriteTimeout bounds each WebSocket write. Default: 10s.
	WriteTimeout time.Duration

	// PingInterval is the time between keepalive pings. Default: 30s.
	// A client that misses two pings is disconnected.
	PingInterval time.Duration

	// MaxMessageSize caps incoming WebSocket messages. Default: 4KB.
	MaxMessageSize int64

	// PageTitle is the title of the page served at "/".
	PageTitle string

	// Dispatcher runs client operations. Default: loop.Inline.
	Dispatcher loop.Dispatcher

	// Registry receives the server's metrics and backs /metrics.
	// Nil disables metrics.
	Registry *prometheus.Registry

	// MetricsNamespace prefixes every metric. Default: "toastd".
	MetricsNamespace string

	// Tracing enables OpenTelemetry request spans.
	Tracing bool

	// TracerName names the tracer. Default: "toastd".
	TracerName string

	// Logger is the structured logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           ":3000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		SendBuffer:        64,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		MaxMessageSize:    4 * 1024,
		PageTitle:         "toastd",
		Dispatcher:        loop.Inline,
		MetricsNamespace:  "toastd",
		TracerName:        "toastd",
		Logger:            slog.Default(),
	}
}

// withDefaults returns a copy of c with unset fields filled in.
func (c *Config) withDefaults() *Config {
	defaults := DefaultConfig()
	if c == nil {
		return defaults
	}
	cfg := *c
	if cfg.Address == "" {
		cfg.Address = defaults.Address
	}
	if cfg.ReadHeaderTimeout == 0 {
		cfg.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaults.SendBuffer
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.PageTitle == "" {
		cfg.PageTitle = defaults.PageTitle
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = defaults.Dispatcher
	}
	if cfg.MetricsNamespace == "" {
		cfg.MetricsNamespace = defaults.MetricsNamespace
	}
	if cfg.TracerName == "" {
		cfg.TracerName = defaults.TracerName
	}
	if cfg.Logger == nil {
		cfg.Logger = defaults.Logger
	}
	return &cfg
}

// checkOrigin returns the WebSocket origin check for the allow list.
// Requests without an Origin header are not from a browser and pass.
func (c *Config) checkOrigin() func(r *http.Request) bool {
	if len(c.AllowedOrigins) == 0 {
		return func(*http.Request) bool { return true }
	}
	allowed := make(map[string]struct{}, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := allowed[u.Scheme+"://"+u.Host]
		return ok
	}
}
