package weather

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rainparis/rainparis/internal/forecast"
	"github.com/rainparis/rainparis/internal/region"
)

const tracerName = "github.com/rainparis/rainparis/internal/weather"

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetRealtime fetches current conditions for a location.
	GetRealtime(ctx context.Context, lat, lon float64) (*Observation, error)

	// GetMinutely fetches the next hour of precipitation at one-minute resolution.
	GetMinutely(ctx context.Context, lat, lon float64) (*MinutelyForecast, error)

	// Name returns the provider name for logging.
	Name() string
}

// RequestRecorder receives timing for each outbound provider call.
type RequestRecorder interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Catalog resolves region ids. Defaults to the built-in Paris catalog.
	Catalog *region.Catalog

	// Location is the zone used for chart labels (default: Europe/Paris, UTC if unavailable).
	Location *time.Location

	// Recorder is optional.
	Recorder RequestRecorder

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service resolves a region and builds its rain report from the provider.
type Service struct {
	provider Provider
	catalog  *region.Catalog
	location *time.Location
	recorder RequestRecorder
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// Report is the merged view served for one region.
type Report struct {
	Region   region.Region
	Current  *Observation
	Forecast *MinutelyForecast
	Summary  forecast.Summary
	Chart    []forecast.ChartPoint
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = region.Default()
	}

	loc := cfg.Location
	if loc == nil {
		var err error
		loc, err = time.LoadLocation("Europe/Paris")
		if err != nil {
			loc = time.UTC
		}
	}

	return &Service{
		provider: cfg.Provider,
		catalog:  catalog,
		location: loc,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// Regions lists the catalog in id order.
func (s *Service) Regions() []region.Region {
	return s.catalog.All()
}

// Report fetches current conditions, then the minutely timeline, for the
// region and summarizes them. The two calls run sequentially and the first
// failure ends the report; nothing is retried.
func (s *Service) Report(ctx context.Context, regionID int) (*Report, error) {
	r, err := s.catalog.Lookup(regionID)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "weather.Report",
		trace.WithAttributes(
			attribute.Int("region.id", r.ID),
			attribute.Float64("region.lat", r.Lat),
			attribute.Float64("region.lon", r.Lon),
		),
	)
	defer span.End()

	log := s.logger.With().
		Int("region_id", r.ID).
		Float64("lat", r.Lat).
		Float64("lon", r.Lon).
		Str("provider", s.provider.Name()).
		Logger()

	current, err := s.fetchRealtime(ctx, r)
	if err != nil {
		s.logFailure(&log, OperationRealtime, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "realtime fetch failed")
		return nil, err
	}

	minutely, err := s.fetchMinutely(ctx, r)
	if err != nil {
		s.logFailure(&log, OperationTimeline, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "timeline fetch failed")
		return nil, err
	}

	summary := forecast.Summarize(minutely.Samples)
	if !summary.HasData() {
		log.Warn().Msg("provider returned an empty minutely timeline")
	}

	span.SetAttributes(
		attribute.String("forecast.status", string(summary.Status)),
		attribute.Int("forecast.samples", len(minutely.Samples)),
	)

	log.Debug().
		Str("summary", summary.Text).
		Int("samples", len(minutely.Samples)).
		Msg("rain report built")

	return &Report{
		Region:   r,
		Current:  current,
		Forecast: minutely,
		Summary:  summary,
		Chart:    forecast.ChartSeries(minutely.Samples, s.location),
	}, nil
}

func (s *Service) fetchRealtime(ctx context.Context, r region.Region) (*Observation, error) {
	start := time.Now()
	obs, err := s.provider.GetRealtime(ctx, r.Lat, r.Lon)
	s.record(OperationRealtime, time.Since(start), err)
	if err != nil {
		return nil, tagOperation(OperationRealtime, err)
	}
	return obs, nil
}

func (s *Service) fetchMinutely(ctx context.Context, r region.Region) (*MinutelyForecast, error) {
	start := time.Now()
	f, err := s.provider.GetMinutely(ctx, r.Lat, r.Lon)
	s.record(OperationTimeline, time.Since(start), err)
	if err != nil {
		return nil, tagOperation(OperationTimeline, err)
	}
	return f, nil
}

func (s *Service) record(op Operation, d time.Duration, err error) {
	if s.recorder != nil {
		s.recorder.RecordRequest(s.provider.Name(), string(op), d, err)
	}
}

func (s *Service) logFailure(log *zerolog.Logger, op Operation, err error) {
	event := log.Error().Err(err).Str("operation", string(op))

	var statusErr *UpstreamStatusError
	if errors.As(err, &statusErr) {
		event = event.Int("status_code", statusErr.StatusCode)
	}

	event.Msg("weather provider call failed")
}

// tagOperation makes sure callers can tell which call failed.
func tagOperation(op Operation, err error) error {
	if _, ok := OperationOf(err); ok {
		return err
	}
	return &OperationError{Operation: op, Err: err}
}

// ValidateCoordinates checks if coordinates are valid.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
