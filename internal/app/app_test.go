package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainparis/rainparis/internal/app"
	"github.com/rainparis/rainparis/internal/config"
	"github.com/rainparis/rainparis/internal/provider/resilience"
	"github.com/rainparis/rainparis/internal/weather"
)

func TestNewLogger_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Env: "production", LogLevel: zerolog.InfoLevel}

	log := app.NewLogger(cfg, &buf, "rainparis", "1.0.0")
	log.Debug().Msg("hidden")
	log.Info().Msg("visible")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "rainparis", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
}

func TestNewLogger_DevelopmentIsHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{Env: "development", LogLevel: zerolog.DebugLevel}

	log := app.NewLogger(cfg, &buf, "rainparis", "dev")
	log.Debug().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "console output is not JSON")
}

func TestNewWeatherService_UsesConfiguredUpstream(t *testing.T) {
	var gotKey, gotTimezone string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("apikey")
		switch r.URL.Path {
		case "/v4/weather/realtime":
			_, _ = io.WriteString(w, `{"data":{"values":{"temperature":12}}}`)
		case "/v4/timelines":
			gotTimezone = r.URL.Query().Get("timezone")
			_, _ = io.WriteString(w, `{"data":{"timelines":[{"intervals":[{"startTime":"2024-05-14T12:00:00Z","values":{}}]}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	cfg := &config.Config{
		TomorrowAPIKey:   "k",
		TomorrowBaseURL:  upstream.URL + "/v4",
		UpstreamTimeout:  time.Second,
		ForecastTimezone: "UTC",
		Location:         time.UTC,
	}
	registry := resilience.NewRegistry()

	svc := app.NewWeatherService(cfg, app.Deps{Logger: zerolog.Nop(), Registry: registry})

	report, err := svc.Report(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "No rain for the next hour", report.Summary.Text)
	assert.Equal(t, "k", gotKey)
	assert.Equal(t, "UTC", gotTimezone)
	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "tomorrowio", snapshot[0].Name)
	assert.NotNil(t, snapshot[0].LastSuccessAt)
}

func TestNewWeatherService_MissingKey(t *testing.T) {
	cfg := &config.Config{TomorrowBaseURL: "http://127.0.0.1:1", UpstreamTimeout: time.Second, Location: time.UTC}

	svc := app.NewWeatherService(cfg, app.Deps{Logger: zerolog.Nop()})

	_, err := svc.Report(context.Background(), 1)
	assert.ErrorIs(t, err, weather.ErrNotConfigured)
}
