package models

import (
	"github.com/rainparis/rainparis/internal/forecast"
	"github.com/rainparis/rainparis/internal/region"
	"github.com/rainparis/rainparis/internal/weather"
)

// WeatherResponse is the body of GET /api/weather/{id}.
type WeatherResponse struct {
	// Temperature in Celsius; null when the provider omitted it.
	Temperature *float64 `json:"temperature"`

	// Precipitation is the current intensity in mm/hr.
	Precipitation float64 `json:"precipitation"`

	// Summary is the one-line rain outlook for the next hour.
	Summary string `json:"summary"`

	// ChartData holds one point per forecast minute.
	ChartData []forecast.ChartPoint `json:"chart_data"`
}

// NewWeatherResponse flattens a report into its JSON form.
func NewWeatherResponse(report *weather.Report) WeatherResponse {
	resp := WeatherResponse{
		Summary:   report.Summary.Text,
		ChartData: report.Chart,
	}
	if report.Current != nil {
		resp.Temperature = report.Current.Temperature
		resp.Precipitation = report.Current.PrecipitationIntensity
	}
	if resp.ChartData == nil {
		resp.ChartData = []forecast.ChartPoint{}
	}
	return resp
}

// Region is one selectable area.
type Region struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// RegionList is the body of GET /api/regions.
type RegionList struct {
	Items []Region `json:"items"`
}

// NewRegionList converts catalog entries to their JSON form.
func NewRegionList(regions []region.Region) RegionList {
	items := make([]Region, len(regions))
	for i, r := range regions {
		items[i] = Region{ID: r.ID, Name: r.Name, Lat: r.Lat, Lon: r.Lon}
	}
	return RegionList{Items: items}
}
