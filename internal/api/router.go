// Package api provides the HTTP server routes for rainparis.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/rainparis/rainparis/internal/api/handler"
	"github.com/rainparis/rainparis/internal/api/middleware"
	"github.com/rainparis/rainparis/internal/api/models"
	"github.com/rainparis/rainparis/internal/api/response"
	"github.com/rainparis/rainparis/internal/provider/resilience"
	"github.com/rainparis/rainparis/web"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// Weather serves reports and the region list.
	Weather handler.WeatherService

	// Registry backs /ops/status.
	Registry         *resilience.Registry
	APIKeyConfigured bool

	// CORSAllowedOrigins enables CORS on /api when non-empty.
	CORSAllowedOrigins []string

	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler

	// Clock is optional.
	Clock clockwork.Clock
}

// NewRouter creates a new chi router with all routes configured.
func NewRouter(cfg RouterConfig) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "rainparis"
	}

	pageHandler, err := handler.NewPageHandler(web.Templates(), cfg.Weather.Regions(), cfg.Version)
	if err != nil {
		return nil, err
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(chimiddleware.RealIP)            // Real IP extraction, before it is logged
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(middleware.SecurityHeaders)      // Security headers (CSP, HSTS over TLS, etc.)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, models.MsgNotFound)
	})
	r.MethodNotAllowed(response.MethodNotAllowed)

	weatherHandler := handler.NewWeatherHandler(cfg.Weather)
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:          cfg.Version,
		BuildTime:        cfg.BuildTime,
		Registry:         cfg.Registry,
		APIKeyConfigured: cfg.APIKeyConfigured,
		Clock:            cfg.Clock,
	})

	// Browser front end
	r.Get("/", pageHandler.Index)
	r.Handle("/static/*", handler.Static(web.Static()))

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
		r.Use(middleware.ContentTypeJSON)
		r.Get("/regions", weatherHandler.ListRegions)
		r.Get("/weather/{id}", weatherHandler.GetWeather)
	})

	// Ops endpoints
	r.Route("/ops", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)
		r.Get("/status", opsHandler.SystemStatus)
	})

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	return r, nil
}
