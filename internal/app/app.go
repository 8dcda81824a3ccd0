// Package app wires configuration into the logger and the weather service
// shared by the server and the command-line client.
package app

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/rainparis/rainparis/internal/config"
	"github.com/rainparis/rainparis/internal/provider/resilience"
	"github.com/rainparis/rainparis/internal/weather"
	"github.com/rainparis/rainparis/internal/weather/tomorrowio"
)

// NewLogger builds the root logger: human-readable console output in
// development, JSON lines otherwise.
func NewLogger(cfg *config.Config, out io.Writer, service, version string) zerolog.Logger {
	if !cfg.IsProduction() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(cfg.LogLevel).
		With().
		Timestamp().
		Str("service", service).
		Str("version", version).
		Logger()
}

// Deps are the optional collaborators of the weather service.
type Deps struct {
	Logger   zerolog.Logger
	Registry *resilience.Registry
	Recorder weather.RequestRecorder
}

// NewWeatherService builds the Tomorrow.io provider behind a circuit breaker
// and the service that summarizes its data.
func NewWeatherService(cfg *config.Config, deps Deps) *weather.Service {
	cbConfig := resilience.DefaultCircuitBreakerConfig(tomorrowio.ProviderName)
	cbConfig.OnStateChange = resilience.LogStateChanges(deps.Logger)

	httpClient := resilience.NewClient(resilience.ClientConfig{
		Name:           tomorrowio.ProviderName,
		Timeout:        cfg.UpstreamTimeout,
		CircuitBreaker: &cbConfig,
		Registry:       deps.Registry,
	})

	provider := tomorrowio.NewClient(tomorrowio.ClientConfig{
		APIKey:     cfg.TomorrowAPIKey,
		BaseURL:    cfg.TomorrowBaseURL,
		Timezone:   cfg.ForecastTimezone,
		HTTPClient: httpClient,
		Logger:     deps.Logger.With().Str("component", "tomorrowio").Logger(),
	})

	return weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Location: cfg.Location,
		Recorder: deps.Recorder,
		Logger:   deps.Logger.With().Str("component", "weather").Logger(),
	})
}
