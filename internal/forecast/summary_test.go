package forecast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainparis/rainparis/internal/forecast"
)

var start = time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 {
	return &v
}

// series builds one sample per minute from the given intensities.
func series(intensities ...float64) []forecast.Sample {
	samples := make([]forecast.Sample, len(intensities))
	for i, v := range intensities {
		samples[i] = forecast.Sample{
			Time:                   start.Add(time.Duration(i) * time.Minute),
			PrecipitationIntensity: ptr(v),
		}
	}
	return samples
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestSummarize_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		samples     []forecast.Sample
		wantText    string
		wantStatus  forecast.Status
		wantMinutes int
	}{
		{
			name:       "all dry",
			samples:    series(repeat(0, 60)...),
			wantText:   "No rain for the next hour",
			wantStatus: forecast.StatusDry,
		},
		{
			name:       "all raining",
			samples:    series(repeat(0.4, 60)...),
			wantText:   "Rain for the next hour",
			wantStatus: forecast.StatusRain,
		},
		{
			name:        "rain starting at minute five",
			samples:     series(append(repeat(0, 5), repeat(1.2, 55)...)...),
			wantText:    "Rain starting in 5 minutes",
			wantStatus:  forecast.StatusRainStarting,
			wantMinutes: 5,
		},
		{
			name:        "rain stopping after one minute uses singular",
			samples:     series(append([]float64{0.8}, repeat(0, 59)...)...),
			wantText:    "Rain stopping in 1 minute",
			wantStatus:  forecast.StatusRainStopping,
			wantMinutes: 1,
		},
		{
			name:       "single raining sample",
			samples:    series(0.1),
			wantText:   "Rain for the next hour",
			wantStatus: forecast.StatusRain,
		},
		{
			name:       "single dry sample",
			samples:    series(0),
			wantText:   "No rain for the next hour",
			wantStatus: forecast.StatusDry,
		},
		{
			name:        "only the first transition is reported",
			samples:     series(0, 0, 0.5, 0, 0.5, 0),
			wantText:    "Rain starting in 2 minutes",
			wantStatus:  forecast.StatusRainStarting,
			wantMinutes: 2,
		},
		{
			name:        "rain stopping later in the hour",
			samples:     series(append(repeat(2, 42), repeat(0, 18)...)...),
			wantText:    "Rain stopping in 42 minutes",
			wantStatus:  forecast.StatusRainStopping,
			wantMinutes: 42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := forecast.Summarize(tt.samples)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantMinutes, got.Minutes)
			assert.True(t, got.HasData())
		})
	}
}

func TestSummarize_MissingIntensityIsDry(t *testing.T) {
	samples := []forecast.Sample{
		{Time: start},
		{Time: start.Add(time.Minute)},
		{Time: start.Add(2 * time.Minute), PrecipitationIntensity: ptr(0.3)},
	}

	got := forecast.Summarize(samples)
	assert.Equal(t, "Rain starting in 2 minutes", got.Text)
}

func TestSummarize_Deterministic(t *testing.T) {
	samples := series(0, 0, 0, 0.2, 0.2, 0)

	first := forecast.Summarize(samples)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, forecast.Summarize(samples))
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := forecast.Summarize(nil)
	assert.Equal(t, forecast.StatusNoData, got.Status)
	assert.False(t, got.HasData())
	assert.NotEmpty(t, got.Text)
}

func TestSummarizeStrict(t *testing.T) {
	_, err := forecast.SummarizeStrict([]forecast.Sample{})
	assert.ErrorIs(t, err, forecast.ErrEmptySeries)

	got, err := forecast.SummarizeStrict(series(0, 1))
	require.NoError(t, err)
	assert.Equal(t, "Rain starting in 1 minute", got.Text)
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "0 minutes", forecast.Pluralize(0, "minute"))
	assert.Equal(t, "1 minute", forecast.Pluralize(1, "minute"))
	assert.Equal(t, "2 minutes", forecast.Pluralize(2, "minute"))
	assert.Equal(t, "59 minutes", forecast.Pluralize(59, "minute"))
}

func TestChartSeries(t *testing.T) {
	samples := series(0, 0.25, 1.5)
	samples = append(samples, forecast.Sample{Time: start.Add(3 * time.Minute)})

	points := forecast.ChartSeries(samples, time.UTC)
	require.Len(t, points, len(samples))

	assert.Equal(t, forecast.ChartPoint{Time: "12:00", Precipitation: 0}, points[0])
	assert.Equal(t, forecast.ChartPoint{Time: "12:01", Precipitation: 0.25}, points[1])
	assert.Equal(t, forecast.ChartPoint{Time: "12:02", Precipitation: 1.5}, points[2])
	assert.Equal(t, forecast.ChartPoint{Time: "12:03", Precipitation: 0}, points[3])
}

func TestChartSeries_ConvertsToLocation(t *testing.T) {
	paris := time.FixedZone("CEST", 2*60*60)

	points := forecast.ChartSeries(series(0.1), paris)
	require.Len(t, points, 1)
	assert.Equal(t, "14:00", points[0].Time)
}

func TestChartSeries_NilLocationKeepsZone(t *testing.T) {
	points := forecast.ChartSeries(series(0.1, 0.2), nil)
	require.Len(t, points, 2)
	assert.Equal(t, "12:00", points[0].Time)
	assert.Equal(t, "12:01", points[1].Time)
}

func TestChartSeries_Empty(t *testing.T) {
	points := forecast.ChartSeries(nil, time.UTC)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestSample_Accessors(t *testing.T) {
	var s forecast.Sample
	assert.Equal(t, 0.0, s.Intensity())
	assert.Equal(t, 0.0, s.Probability())
	assert.False(t, s.Raining())

	s.PrecipitationIntensity = ptr(0.01)
	s.PrecipitationProbability = ptr(35)
	assert.True(t, s.Raining())
	assert.Equal(t, 35.0, s.Probability())
}
