package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/toastd/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "toastd.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "toastd"
)

// ToastTypes are the keys accepted in ToastConfig.Durations.
var ToastTypes = []string{"success", "error", "info", "warning"}

// Config represents the complete toastd.json configuration.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Toast     ToastConfig     `json:"toast"`
	WebSocket WebSocketConfig `json:"websocket"`
	Loop      LoopConfig      `json:"loop"`
	Metrics   MetricsConfig   `json:"metrics"`
	Tracing   TracingConfig   `json:"tracing"`
	Log       LogConfig       `json:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout Duration `json:"shutdownTimeout,omitempty"`

	// AllowedOrigins restricts WebSocket origins. Empty allows all.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// ToastConfig contains toast lifecycle defaults.
type ToastConfig struct {
	// ExitDelay is the gap between hiding a toast and closing it.
	// 0 closes immediately.
	ExitDelay Duration `json:"exitDelay"`

	// MaxVisible caps the number of showing toasts. 0 means no limit.
	MaxVisible int `json:"maxVisible,omitempty"`

	// Durations are the per-type auto-dismiss defaults.
	Durations map[string]Duration `json:"durations,omitempty"`
}

// WebSocketConfig contains WebSocket push settings.
type WebSocketConfig struct {
	// SendBuffer is the per-client outgoing message buffer.
	SendBuffer int `json:"sendBuffer,omitempty"`

	// WriteTimeout bounds each write to a client.
	WriteTimeout Duration `json:"writeTimeout,omitempty"`

	// PingInterval is the time between keepalive pings.
	PingInterval Duration `json:"pingInterval,omitempty"`
}

// LoopConfig contains event loop settings.
type LoopConfig struct {
	// QueueSize is the dispatch buffer size.
	QueueSize int `json:"queueSize,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled"`
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Toast: ToastConfig{
			ExitDelay: Duration(300 * time.Millisecond),
			Durations: DefaultDurations(),
		},
		WebSocket: WebSocketConfig{
			SendBuffer:   64,
			WriteTimeout: Duration(10 * time.Second),
			PingInterval: Duration(30 * time.Second),
		},
		Loop: LoopConfig{
			QueueSize: 256,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			Enabled:    true,
			TracerName: DefaultNamespace,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultDurations returns the per-type default durations.
func DefaultDurations() map[string]Duration {
	return map[string]Duration{
		"success": Duration(4 * time.Second),
		"error":   Duration(6 * time.Second),
		"info":    Duration(4 * time.Second),
		"warning": Duration(5 * time.Second),
	}
}

// Load reads configuration from the specified directory.
// It looks for toastd.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("T100").
				WithDetail("No " + ConfigFileName + " found at " + path).
				WithSuggestion("Run 'toastd config init' to write a default config")
		}
		return nil, errors.New("T101").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("T101").
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadOrDefault loads path when it exists and returns defaults otherwise.
// An empty path always returns defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return New(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}
	return LoadFile(path)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("T105").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("T105").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	defaults := New()

	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}

	// Partial duration maps keep the defaults for types they omit.
	merged := DefaultDurations()
	for k, v := range c.Toast.Durations {
		merged[strings.ToLower(k)] = v
	}
	c.Toast.Durations = merged

	if c.WebSocket.SendBuffer == 0 {
		c.WebSocket.SendBuffer = defaults.WebSocket.SendBuffer
	}
	if c.WebSocket.WriteTimeout == 0 {
		c.WebSocket.WriteTimeout = defaults.WebSocket.WriteTimeout
	}
	if c.WebSocket.PingInterval == 0 {
		c.WebSocket.PingInterval = defaults.WebSocket.PingInterval
	}

	if c.Loop.QueueSize == 0 {
		c.Loop.QueueSize = defaults.Loop.QueueSize
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = defaults.Tracing.TracerName
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("T104").
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Toast.ExitDelay < 0 {
		return errors.New("T102").
			WithDetail("toast.exitDelay must not be negative")
	}
	if c.Toast.MaxVisible < 0 {
		return errors.New("T104").
			WithDetail("toast.maxVisible must not be negative")
	}
	for k := range c.Toast.Durations {
		if !validType(k) {
			return errors.New("T103").
				WithDetail(fmt.Sprintf("toast.durations has unknown type %q", k)).
				WithSuggestion("Use one of " + strings.Join(ToastTypes, ", "))
		}
	}
	if c.WebSocket.SendBuffer < 0 || c.Loop.QueueSize < 0 {
		return errors.New("T104").
			WithDetail("websocket.sendBuffer and loop.queueSize must not be negative")
	}
	if c.WebSocket.WriteTimeout < 0 || c.WebSocket.PingInterval < 0 || c.Server.ShutdownTimeout < 0 {
		return errors.New("T102").
			WithDetail("timeouts must not be negative")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("T104").Wrap(err).
			WithSuggestion("Use debug, info, warn or error")
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return errors.New("T104").
			WithDetail(fmt.Sprintf("log.format %q must be text or json", c.Log.Format))
	}
	return nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the base URL of the server.
func (c *Config) URL() string {
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + host + ":" + strconv.Itoa(c.Server.Port)
}

// NewLogger builds the structured logger described by the log section.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(c.Log.Format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func validType(s string) bool {
	for _, t := range ToastTypes {
		if s == t {
			return true
		}
	}
	return false
}
