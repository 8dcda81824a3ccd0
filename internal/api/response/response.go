// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/rainparis/rainparis/internal/api/middleware"
	"github.com/rainparis/rainparis/internal/api/models"
)

// JSON writes a JSON response with the given status code.
// Includes X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logWriteFailure(r, status, err)
		}
	}
}

// Error writes an {"error": message} response with the given status.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	requestID := middleware.GetRequestID(r.Context())
	if err := models.NewErrorResponse(requestID, message).Write(w, status); err != nil {
		logWriteFailure(r, status, err)
	}
}

// logWriteFailure reports a body that could not be written, usually because
// the client went away. It uses the request logger set by middleware.Logger.
func logWriteFailure(r *http.Request, status int, err error) {
	zerolog.Ctx(r.Context()).Warn().
		Err(err).
		Int("status", status).
		Msg("failed to write response body")
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusNotFound, message)
}

// MethodNotAllowed writes a 405 Method Not Allowed error response.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusMethodNotAllowed, models.MsgMethodNotAllowed)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, message string) {
	Error(w, r, http.StatusInternalServerError, message)
}
