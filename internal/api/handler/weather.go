// Package handler provides HTTP handlers for the rainparis server.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rainparis/rainparis/internal/api/models"
	"github.com/rainparis/rainparis/internal/api/response"
	"github.com/rainparis/rainparis/internal/region"
	"github.com/rainparis/rainparis/internal/weather"
)

// WeatherService is the part of weather.Service the handlers need.
type WeatherService interface {
	Report(ctx context.Context, regionID int) (*weather.Report, error)
	Regions() []region.Region
}

// WeatherHandler handles the JSON weather endpoints.
type WeatherHandler struct {
	service WeatherService
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(service WeatherService) *WeatherHandler {
	return &WeatherHandler{service: service}
}

// GetWeather handles GET /api/weather/{id}.
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRegionID(chi.URLParam(r, "id"))
	if !ok {
		response.NotFound(w, r, models.MsgInvalidRegion)
		return
	}

	report, err := h.service.Report(r.Context(), id)
	if err != nil {
		if errors.Is(err, region.ErrNotFound) {
			response.NotFound(w, r, models.MsgInvalidRegion)
			return
		}
		response.InternalError(w, r, errorMessage(err))
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewWeatherResponse(report))
}

// ListRegions handles GET /api/regions.
func (h *WeatherHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.NewRegionList(h.service.Regions()))
}

// parseRegionID accepts only unsigned decimal ids, so "+3", "-1" and "3.0"
// are rejected the same way as out-of-range ids.
func parseRegionID(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

// errorMessage maps a report failure to its client-facing message.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, weather.ErrNotConfigured):
		return models.MsgNotConfigured
	case errors.Is(err, weather.ErrUpstreamShape):
		return models.MsgInvalidStructure
	}

	if op, ok := weather.OperationOf(err); ok && op == weather.OperationTimeline {
		return models.MsgForecastFetch
	}
	return models.MsgWeatherFetch
}
