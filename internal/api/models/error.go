package models

import (
	"encoding/json"
	"net/http"
)

// Client-facing error messages. These strings are part of the API contract
// and are matched by the bundled front end.
const (
	MsgInvalidRegion    = "Invalid arrondissement"
	MsgNotConfigured    = "API key not configured"
	MsgWeatherFetch     = "Failed to fetch weather data"
	MsgForecastFetch    = "Failed to fetch forecast data"
	MsgInvalidStructure = "Invalid data structure from weather API"
	MsgInternal         = "Internal server error"
	MsgNotFound         = "Not found"
	MsgMethodNotAllowed = "Method not allowed"
)

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error body for the given request.
func NewErrorResponse(requestID, message string) *ErrorResponse {
	return &ErrorResponse{Error: message, RequestID: requestID}
}

// Write writes the error as JSON with the given status. The returned error is
// the body encoding failure, if any; the status is already sent by then.
func (e *ErrorResponse) Write(w http.ResponseWriter, status int) error {
	w.Header().Set("Content-Type", "application/json")
	if e.RequestID != "" {
		w.Header().Set("X-Request-Id", e.RequestID)
	}
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(e)
}
