// Package tomorrowio implements weather.Provider against the Tomorrow.io v4 API.
package tomorrowio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/rainparis/rainparis/internal/forecast"
	"github.com/rainparis/rainparis/internal/provider/resilience"
	"github.com/rainparis/rainparis/internal/region"
	"github.com/rainparis/rainparis/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "tomorrowio"

	// DefaultBaseURL is the Tomorrow.io v4 API base URL.
	DefaultBaseURL = "https://api.tomorrow.io/v4"

	// DefaultTimezone is the zone requested for timeline timestamps.
	DefaultTimezone = "Europe/Paris"

	minutelyFields = "precipitationIntensity,precipitationProbability"

	// maxBodyBytes caps how much of a provider response is read.
	maxBodyBytes = 1 << 20
)

// ClientConfig holds configuration for the Tomorrow.io client.
type ClientConfig struct {
	// APIKey is the Tomorrow.io API key. Calls fail with weather.ErrNotConfigured when empty.
	APIKey string

	// BaseURL is the API base URL (optional, defaults to DefaultBaseURL).
	BaseURL string

	// Timezone requested for timeline timestamps (optional, defaults to DefaultTimezone).
	Timezone string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Clock stamps FetchedAt (optional, defaults to the real clock).
	Clock clockwork.Clock

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Tomorrow.io API client.
type Client struct {
	apiKey     string
	baseURL    string
	timezone   string
	httpClient *resilience.Client
	clock      clockwork.Clock
	logger     zerolog.Logger
}

// NewClient creates a new Tomorrow.io client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timezone := cfg.Timezone
	if timezone == "" {
		timezone = DefaultTimezone
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		timezone:   timezone,
		httpClient: httpClient,
		clock:      clock,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetRealtime fetches current conditions for a location.
func (c *Client) GetRealtime(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	if err := weather.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("location", region.Region{Lat: lat, Lon: lon}.Location())
	params.Set("units", "metric")

	var resp realtimeResponse
	if err := c.get(ctx, weather.OperationRealtime, "/weather/realtime", params, realtimeSchema, &resp); err != nil {
		return nil, err
	}

	return c.toObservation(lat, lon, &resp), nil
}

// GetMinutely fetches the next hour of precipitation at one-minute resolution.
func (c *Client) GetMinutely(ctx context.Context, lat, lon float64) (*weather.MinutelyForecast, error) {
	if err := weather.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("location", region.Region{Lat: lat, Lon: lon}.Location())
	params.Set("fields", minutelyFields)
	params.Set("timesteps", "1m")
	params.Set("startTime", "now")
	params.Set("endTime", "nowPlus1h")
	params.Set("units", "metric")
	params.Set("timezone", c.timezone)

	var resp timelinesResponse
	if err := c.get(ctx, weather.OperationTimeline, "/timelines", params, timelinesSchema, &resp); err != nil {
		return nil, err
	}

	return c.toMinutely(lat, lon, &resp), nil
}

// get performs one GET, checks the status, validates the body against schema
// and decodes it into out.
func (c *Client) get(
	ctx context.Context,
	op weather.Operation,
	path string,
	params url.Values,
	schema *payloadSchema,
	out any,
) error {
	if c.apiKey == "" {
		return weather.ErrNotConfigured
	}

	c.logger.Debug().
		Str("operation", string(op)).
		Str("path", path).
		Str("location", params.Get("location")).
		Msg("calling weather provider")

	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return &weather.OperationError{Operation: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the API key; keep it out of the error text.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return &weather.OperationError{Operation: op, Err: fmt.Errorf("%w: %w", weather.ErrUpstreamTransport, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &weather.UpstreamStatusError{Operation: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &weather.OperationError{Operation: op, Err: fmt.Errorf("%w: reading body: %w", weather.ErrUpstreamTransport, err)}
	}

	if err := schema.validate(body); err != nil {
		return &weather.OperationError{Operation: op, Err: fmt.Errorf("%w: %w", weather.ErrUpstreamShape, err)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &weather.OperationError{Operation: op, Err: fmt.Errorf("%w: decoding response: %w", weather.ErrUpstreamShape, err)}
	}

	return nil
}

// toObservation converts a realtime response to the domain model.
func (c *Client) toObservation(lat, lon float64, resp *realtimeResponse) *weather.Observation {
	v := resp.Data.Values

	obs := &weather.Observation{
		Lat:                      lat,
		Lon:                      lon,
		Temperature:              v.Temperature,
		PrecipitationProbability: v.PrecipitationProbability,
		Humidity:                 v.Humidity,
		WindSpeed:                v.WindSpeed,
		ObservedAt:               resp.Data.Time,
		FetchedAt:                c.clock.Now(),
	}

	if v.PrecipitationIntensity != nil {
		obs.PrecipitationIntensity = *v.PrecipitationIntensity
	}

	if v.WeatherCode != nil {
		obs.WeatherCode = *v.WeatherCode
		obs.Condition = mapWeatherCode(*v.WeatherCode)
	} else {
		obs.Condition = weather.ConditionUnknown
	}

	return obs
}

// toMinutely converts the first timeline of a timelines response to the domain model.
func (c *Client) toMinutely(lat, lon float64, resp *timelinesResponse) *weather.MinutelyForecast {
	intervals := resp.Data.Timelines[0].Intervals

	f := &weather.MinutelyForecast{
		Lat:       lat,
		Lon:       lon,
		Samples:   make([]forecast.Sample, 0, len(intervals)),
		FetchedAt: c.clock.Now(),
	}

	for _, iv := range intervals {
		f.Samples = append(f.Samples, forecast.Sample{
			Time:                     iv.StartTime,
			PrecipitationIntensity:   iv.Values.PrecipitationIntensity,
			PrecipitationProbability: iv.Values.PrecipitationProbability,
		})
	}

	return f
}

// mapWeatherCode maps a Tomorrow.io weather code to a domain condition.
func mapWeatherCode(code int) weather.Condition {
	switch code {
	case 1000, 1100:
		return weather.ConditionClear
	case 1001, 1101, 1102:
		return weather.ConditionClouds
	case 2000, 2100:
		return weather.ConditionFog
	case 4000:
		return weather.ConditionDrizzle
	case 4001, 4200, 4201:
		return weather.ConditionRain
	case 5000, 5001, 5100, 5101:
		return weather.ConditionSnow
	case 6000, 6001, 6200, 6201:
		return weather.ConditionFreezingRain
	case 7000, 7101, 7102:
		return weather.ConditionIcePellets
	case 8000:
		return weather.ConditionThunderstorm
	default:
		return weather.ConditionUnknown
	}
}

// Tomorrow.io API response structures.

type realtimeResponse struct {
	Data struct {
		Time   time.Time `json:"time"`
		Values struct {
			Temperature              *float64 `json:"temperature"`
			PrecipitationIntensity   *float64 `json:"precipitationIntensity"`
			PrecipitationProbability *float64 `json:"precipitationProbability"`
			Humidity                 *float64 `json:"humidity"`
			WindSpeed                *float64 `json:"windSpeed"`
			WeatherCode              *int     `json:"weatherCode"`
		} `json:"values"`
	} `json:"data"`
}

type timelinesResponse struct {
	Data struct {
		Timelines []struct {
			Timestep  string `json:"timestep"`
			Intervals []struct {
				StartTime time.Time `json:"startTime"`
				Values    struct {
					PrecipitationIntensity   *float64 `json:"precipitationIntensity"`
					PrecipitationProbability *float64 `json:"precipitationProbability"`
				} `json:"values"`
			} `json:"intervals"`
		} `json:"timelines"`
	} `json:"data"`
}
