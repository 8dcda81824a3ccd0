// Package main provides the entrypoint for the rainparis web server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // FORECAST_TIMEZONE must resolve on images without zoneinfo

	"github.com/rs/zerolog"

	"github.com/rainparis/rainparis/internal/api"
	"github.com/rainparis/rainparis/internal/api/middleware"
	"github.com/rainparis/rainparis/internal/app"
	"github.com/rainparis/rainparis/internal/config"
	"github.com/rainparis/rainparis/internal/provider/resilience"
	"github.com/rainparis/rainparis/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	serviceName     = "rainparis"
	shutdownTimeout = 30 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stdout, os.Stderr, nil))
}

// run serves until ctx is done and returns the process exit code. When ready
// is non-nil it receives the bound listen address once the server accepts
// connections.
func run(ctx context.Context, stdout, stderr io.Writer, ready chan<- string) int {
	bootLog := zerolog.New(stderr).With().Timestamp().Str("service", serviceName).Logger()

	cfg, err := config.Load()
	if err != nil {
		bootLog.Error().Err(err).Msg("invalid configuration")
		return 1
	}

	log := app.NewLogger(cfg, stdout, serviceName, Version)

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Env).
		Msg("starting rainparis")

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:       serviceName,
		ServiceVersion:    Version,
		Environment:       cfg.Env,
		OTLPEndpoint:      cfg.OTLPEndpoint,
		Enabled:           cfg.OTELEnabled,
		PrometheusEnabled: cfg.MetricsEnabled,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize telemetry")
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTELEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	server, err := newServer(cfg, log, tp.MetricsHandler)
	if err != nil {
		log.Error().Err(err).Msg("failed to build server")
		return 1
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		log.Error().Err(err).Str("addr", server.Addr).Msg("failed to listen")
		return 1
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", ln.Addr().String()).
			Msg("server listening")
		serveErr <- server.Serve(ln)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return 1
	}

	log.Info().Msg("server stopped")
	return 0
}

// newServer wires metrics, the provider registry and the weather service into
// an http.Server listening on cfg.Addr().
func newServer(cfg *config.Config, log zerolog.Logger, metricsHandler http.Handler) (*http.Server, error) {
	metrics, err := middleware.NewMetrics()
	if err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}

	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		return nil, fmt.Errorf("initializing provider metrics: %w", err)
	}

	registry := resilience.NewRegistry()
	if err := middleware.ObserveCircuitBreakers(registry); err != nil {
		return nil, fmt.Errorf("observing circuit breakers: %w", err)
	}

	if cfg.TomorrowAPIKey == "" {
		log.Warn().Msg("TOMORROW_API_KEY is not set - weather endpoints will fail")
	}

	weatherService := app.NewWeatherService(cfg, app.Deps{
		Logger:   log,
		Registry: registry,
		Recorder: providerMetrics,
	})
	log.Info().
		Str("timezone", cfg.Location.String()).
		Dur("upstream_timeout", cfg.UpstreamTimeout).
		Msg("weather service initialized")

	router, err := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		Weather:            weatherService,
		Registry:           registry,
		APIKeyConfigured:   cfg.TomorrowAPIKey != "",
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsHandler:     metricsHandler,
	})
	if err != nil {
		return nil, fmt.Errorf("building router: %w", err)
	}

	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout*2 + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}
