package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/toastd/internal/config"
	"github.com/vango-dev/toastd/internal/errors"
	"github.com/vango-dev/toastd/pkg/loop"
	"github.com/vango-dev/toastd/pkg/middleware"
	"github.com/vango-dev/toastd/pkg/server"
	"github.com/vango-dev/toastd/pkg/toast"
)

type serveOptions struct {
	port       int
	host       string
	exitDelay  time.Duration
	maxVisible int
	logLevel   string
	noMetrics  bool
	noTracing  bool
}

func serveCmd(flags *globalFlags) *cobra.Command {
	opts := &serveOptions{maxVisible: -1, exitDelay: -1}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the toast server",
		Long: `Start the toast server.

Settings come from toastd.json when it exists; flags override them.

Examples:
  toastd serve
  toastd serve --port=8080 --host=0.0.0.0
  toastd serve --exit-delay=150ms --max-visible=5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(flags.configPath, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			printBanner(cmd.OutOrStdout())
			info(cmd.OutOrStdout(), "Listening on %s", cfg.URL())
			fmt.Fprintln(cmd.OutOrStdout())

			return runServe(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.port, "port", "p", 0, "Port to listen on (default from config)")
	f.StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from config)")
	f.DurationVar(&opts.exitDelay, "exit-delay", -1, "Delay between hiding and closing a toast")
	f.IntVar(&opts.maxVisible, "max-visible", -1, "Maximum number of showing toasts, 0 for no limit")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.BoolVar(&opts.noMetrics, "no-metrics", false, "Disable Prometheus metrics")
	f.BoolVar(&opts.noTracing, "no-tracing", false, "Disable OpenTelemetry tracing")

	return cmd
}

// loadServeConfig resolves the config file and applies flag overrides.
func loadServeConfig(path string, opts *serveOptions) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}
	if opts.host != "" {
		cfg.Server.Host = opts.host
	}
	if opts.exitDelay >= 0 {
		cfg.Toast.ExitDelay = config.Duration(opts.exitDelay)
	}
	if opts.maxVisible >= 0 {
		cfg.Toast.MaxVisible = opts.maxVisible
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.noMetrics {
		cfg.Metrics.Enabled = false
	}
	if opts.noTracing {
		cfg.Tracing.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runServe wires the loop, host and server and blocks until ctx is done.
func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	lp := loop.New(cfg.Loop.QueueSize, logger)
	go lp.Run(ctx)
	defer lp.Close()

	host := toast.NewHost(hostConfig(cfg, lp, logger))
	defer host.Close()

	srv := server.New(host, serverConfig(cfg, lp, logger))

	if err := srv.ListenAndServe(ctx); err != nil {
		return errors.New("T300").
			WithDetail("Could not serve on " + cfg.Address()).
			Wrap(err)
	}
	return nil
}

func hostConfig(cfg *config.Config, d loop.Dispatcher, logger *slog.Logger) *toast.HostConfig {
	durations := make(map[toast.Type]time.Duration, len(cfg.Toast.Durations))
	for name, v := range cfg.Toast.Durations {
		durations[toast.Type(name)] = v.Std()
	}

	hc := toast.DefaultHostConfig()
	hc.Durations = durations
	hc.ExitDelay = cfg.Toast.ExitDelay.Std()
	if hc.ExitDelay == 0 {
		hc.ExitDelay = toast.NoExitDelay
	}
	hc.MaxVisible = cfg.Toast.MaxVisible
	hc.Dispatcher = d
	hc.Logger = logger
	if cfg.Tracing.Enabled {
		hc.Observers = append(hc.Observers,
			middleware.TracingObserver(middleware.WithTracerName(cfg.Tracing.TracerName)))
	}
	return hc
}

func serverConfig(cfg *config.Config, d loop.Dispatcher, logger *slog.Logger) *server.Config {
	sc := server.DefaultConfig()
	sc.Address = cfg.Address()
	sc.ShutdownTimeout = cfg.Server.ShutdownTimeout.Std()
	sc.AllowedOrigins = cfg.Server.AllowedOrigins
	sc.SendBuffer = cfg.WebSocket.SendBuffer
	sc.WriteTimeout = cfg.WebSocket.WriteTimeout.Std()
	sc.PingInterval = cfg.WebSocket.PingInterval.Std()
	sc.Dispatcher = d
	sc.Tracing = cfg.Tracing.Enabled
	sc.TracerName = cfg.Tracing.TracerName
	sc.MetricsNamespace = cfg.Metrics.Namespace
	sc.Logger = logger

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sc.Registry = reg
	}
	return sc
}
