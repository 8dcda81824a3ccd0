package forecast

import (
	"strconv"
	"time"
)

const (
	textNoData      = "No forecast data available"
	textRainAllHour = "Rain for the next hour"
	textDryAllHour  = "No rain for the next hour"
)

// chartTimeLayout is the HH:MM label used on the chart axis.
const chartTimeLayout = "15:04"

// Summarize describes the first change in rain state over the samples.
//
// Every sample is compared with the first one, so only the first transition
// away from the current state is reported; later oscillations are ignored.
// An empty series yields a NO_DATA summary.
func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{Status: StatusNoData, Text: textNoData}
	}

	raining := samples[0].Raining()

	for i, s := range samples {
		switch {
		case !raining && s.Raining():
			return Summary{
				Status:  StatusRainStarting,
				Text:    "Rain starting in " + Pluralize(i, "minute"),
				Minutes: i,
			}
		case raining && !s.Raining():
			return Summary{
				Status:  StatusRainStopping,
				Text:    "Rain stopping in " + Pluralize(i, "minute"),
				Minutes: i,
			}
		}
	}

	if raining {
		return Summary{Status: StatusRain, Text: textRainAllHour}
	}
	return Summary{Status: StatusDry, Text: textDryAllHour}
}

// SummarizeStrict is Summarize for callers that treat an empty series as an error.
func SummarizeStrict(samples []Sample) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, ErrEmptySeries
	}
	return Summarize(samples), nil
}

// ChartSeries converts samples into chart points, one per sample and in the
// same order. Times are rendered as HH:MM in loc; a nil loc keeps each
// sample's own zone.
func ChartSeries(samples []Sample, loc *time.Location) []ChartPoint {
	points := make([]ChartPoint, 0, len(samples))
	for _, s := range samples {
		t := s.Time
		if loc != nil {
			t = t.In(loc)
		}
		points = append(points, ChartPoint{
			Time:          t.Format(chartTimeLayout),
			Precipitation: s.Intensity(),
		})
	}
	return points
}

// Pluralize renders a count with its unit, adding an "s" unless count is 1.
func Pluralize(count int, unit string) string {
	if count == 1 {
		return "1 " + unit
	}
	return strconv.Itoa(count) + " " + unit + "s"
}
