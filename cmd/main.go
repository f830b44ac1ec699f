package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh"
	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh/stub"
	"github.com/rizwanaperveen/covid/internal/adapters/http/api"
	"github.com/rizwanaperveen/covid/internal/adapters/http/site"
	"github.com/rizwanaperveen/covid/internal/adapters/http/swagger"
	app "github.com/rizwanaperveen/covid/internal/app"
	"github.com/rizwanaperveen/covid/internal/config"
	"github.com/rizwanaperveen/covid/internal/render"
	"github.com/rizwanaperveen/covid/pkg/logger"
	"github.com/rizwanaperveen/covid/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging with defaults until the configured format is known
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	mux, svc, cleanup, err := setup(ctx, cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to set up service", logger.Error(err))
		return
	}
	defer cleanup()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
		// No write timeout: a dashboard render waits on unbounded upstream calls
		// unless upstream_timeout_ms is set.
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("default_country", svc.DefaultCountry()),
			logger.Int("history_days", svc.HistoryDays()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// setup builds the service and its routes from cfg. In stub mode it also
// starts the fixture upstream; cleanup stops it.
func setup(ctx context.Context, cfg *config.Config) (*http.ServeMux, *app.Service, func(), error) {
	cleanup := func() {}
	baseURL := cfg.UpstreamBaseURL

	if cfg.StubUpstream {
		st, err := stub.Start("127.0.0.1:0")
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Get().Info(ctx, "serving stub upstream", logger.String("url", st.URL))
		baseURL = st.URL
		cleanup = func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = st.Close(shutdownCtx)
		}
	}

	clientOpts := []diseasesh.Option{diseasesh.WithBaseURL(baseURL)}
	if cfg.UpstreamTimeoutMS > 0 {
		clientOpts = append(clientOpts, diseasesh.WithTimeout(time.Duration(cfg.UpstreamTimeoutMS)*time.Millisecond))
	}

	svc := app.New(
		app.WithLogger(logger.Named("service")),
		app.WithUpstream(diseasesh.New(clientOpts...)),
		app.WithPlotter(render.NewChartPlotter(cfg.ChartWidth, cfg.ChartHeight)),
		app.WithDefaultCountry(cfg.DefaultCountry),
		app.WithHistoryDays(cfg.HistoryDays),
	)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	site.Register(ctx, mux, svc)

	return mux, svc, cleanup, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
