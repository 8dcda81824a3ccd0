// Package forecast turns a minute-by-minute precipitation forecast into a
// one-line rain summary and a chart series.
package forecast

import (
	"errors"
	"time"
)

// ErrEmptySeries is returned by SummarizeStrict when there are no samples.
var ErrEmptySeries = errors.New("forecast series is empty")

// Sample is one minute of a precipitation forecast.
type Sample struct {
	Time time.Time

	// PrecipitationIntensity in mm/hr. Nil when the provider omitted it.
	PrecipitationIntensity *float64

	// PrecipitationProbability in percent (0-100). Nil when omitted.
	PrecipitationProbability *float64
}

// Intensity returns the precipitation intensity, treating a missing value as 0.
func (s Sample) Intensity() float64 {
	if s.PrecipitationIntensity == nil {
		return 0
	}
	return *s.PrecipitationIntensity
}

// Probability returns the precipitation probability, treating a missing value as 0.
func (s Sample) Probability() float64 {
	if s.PrecipitationProbability == nil {
		return 0
	}
	return *s.PrecipitationProbability
}

// Raining reports whether any precipitation is forecast for the sample.
func (s Sample) Raining() bool {
	return s.Intensity() > 0
}

// Status classifies a Summary.
type Status string

const (
	StatusNoData       Status = "NO_DATA"
	StatusDry          Status = "DRY"
	StatusRain         Status = "RAIN"
	StatusRainStarting Status = "RAIN_STARTING"
	StatusRainStopping Status = "RAIN_STOPPING"
)

// Summary is the human readable outlook for the forecast window.
type Summary struct {
	Status Status
	Text   string

	// Minutes is the offset of the transition for RAIN_STARTING and
	// RAIN_STOPPING, zero otherwise.
	Minutes int
}

// HasData reports whether the summary was computed from at least one sample.
func (s Summary) HasData() bool {
	return s.Status != StatusNoData
}

// ChartPoint is one entry of the precipitation chart.
type ChartPoint struct {
	Time          string  `json:"time"`
	Precipitation float64 `json:"precipitation"`
}
