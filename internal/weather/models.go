package weather

import (
	"errors"
	"fmt"
	"time"

	"github.com/rainparis/rainparis/internal/forecast"
)

// Weather errors.
var (
	// ErrNotConfigured is returned when the provider credential is missing.
	ErrNotConfigured = errors.New("weather provider API key not configured")

	// ErrUpstreamTransport wraps network failures, timeouts and open circuits.
	ErrUpstreamTransport = errors.New("weather provider unreachable")

	// ErrUpstreamShape is returned when a provider payload does not have the expected structure.
	ErrUpstreamShape = errors.New("invalid data structure from weather provider")

	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Operation names an outbound provider call.
type Operation string

const (
	OperationRealtime Operation = "realtime"
	OperationTimeline Operation = "timeline"
)

// UpstreamStatusError reports a non-200 answer from the provider.
type UpstreamStatusError struct {
	Operation  Operation
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s request returned status %d", e.Operation, e.StatusCode)
}

// OperationOf extracts the failing operation from a provider error, if known.
func OperationOf(err error) (Operation, bool) {
	var statusErr *UpstreamStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Operation, true
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Operation, true
	}
	return "", false
}

// OperationError attaches the provider operation to an underlying error.
type OperationError struct {
	Operation Operation
	Err       error
}

func (e *OperationError) Error() string {
	return string(e.Operation) + ": " + e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Observation represents current conditions at a point.
type Observation struct {
	// Location coordinates
	Lat float64
	Lon float64

	// Temperature in Celsius, nil when the provider omitted it.
	Temperature *float64

	// PrecipitationIntensity in mm/hr (0 when omitted).
	PrecipitationIntensity float64

	// PrecipitationProbability in percent (0-100), nil when omitted.
	PrecipitationProbability *float64

	// Humidity percentage (0-100), nil when omitted.
	Humidity *float64

	// WindSpeed in m/s, nil when omitted.
	WindSpeed *float64

	// Weather condition
	WeatherCode int
	Condition   Condition

	// Timestamps
	ObservedAt time.Time
	FetchedAt  time.Time
}

// Raining reports whether precipitation is currently observed.
func (o *Observation) Raining() bool {
	return o.PrecipitationIntensity > 0
}

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionFreezingRain Condition = "FREEZING_RAIN"
	ConditionIcePellets   Condition = "ICE_PELLETS"
	ConditionFog          Condition = "FOG"
	ConditionUnknown      Condition = "UNKNOWN"
)

// MinutelyForecast is a one-hour, one-minute resolution precipitation timeline.
type MinutelyForecast struct {
	// Location
	Lat float64
	Lon float64

	// Samples in chronological order.
	Samples []forecast.Sample

	// When the forecast was fetched
	FetchedAt time.Time
}
