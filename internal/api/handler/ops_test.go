package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainparis/rainparis/internal/api/handler"
	"github.com/rainparis/rainparis/internal/api/models"
	"github.com/rainparis/rainparis/internal/provider/resilience"
)

var opsNow = time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

func newOps(t *testing.T, apiKey bool) (*handler.OpsHandler, *resilience.Registry, *resilience.Client) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(opsNow)
	registry := resilience.NewRegistryWithClock(clock)

	cfg := resilience.DefaultClientConfig("tomorrowio")
	cfg.Registry = registry
	cfg.CircuitBreaker = &resilience.CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 1 },
	}
	client := resilience.NewClient(cfg)

	h := handler.NewOpsHandler(handler.OpsConfig{
		Version:          "1.0.0",
		BuildTime:        "2024-05-01",
		Registry:         registry,
		APIKeyConfigured: apiKey,
		Clock:            clock,
	})
	return h, registry, client
}

func TestOpsHandler_HealthCheck(t *testing.T) {
	h, _, _ := newOps(t, true)

	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/ops/health", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status": "OK",
		"time": "2024-05-14T12:00:00Z",
		"details": {"version": "1.0.0", "buildTime": "2024-05-01"}
	}`, rec.Body.String())
}

func TestOpsHandler_Readiness(t *testing.T) {
	h, _, _ := newOps(t, true)
	rec := httptest.NewRecorder()
	h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/ops/ready", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","time":"2024-05-14T12:00:00Z"}`, rec.Body.String())

	h, _, _ = newOps(t, false)
	rec = httptest.NewRecorder()
	h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/ops/ready", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusDegraded, health.Status)
}

func TestOpsHandler_SystemStatus_Healthy(t *testing.T) {
	h, registry, _ := newOps(t, true)
	registry.RecordSuccess("tomorrowio")

	rec := httptest.NewRecorder()
	h.SystemStatus(rec, httptest.NewRequest(http.MethodGet, "/ops/status", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))

	assert.Equal(t, models.HealthStatusOK, status.Status)
	require.Len(t, status.Subsystems, 2)
	assert.Equal(t, "region-catalog", status.Subsystems[0].Name)
	require.NotNil(t, status.Subsystems[0].Detail)
	assert.Equal(t, "21 regions", *status.Subsystems[0].Detail)

	require.Len(t, status.Providers, 1)
	p := status.Providers[0]
	assert.Equal(t, "tomorrowio", p.Provider)
	assert.Equal(t, models.HealthStatusOK, p.Status)
	assert.Equal(t, "closed", p.CircuitState)
	require.NotNil(t, p.LastSuccessAt)
	assert.True(t, opsNow.Equal(p.LastSuccessAt.Time()))
}

func TestOpsHandler_SystemStatus_OpenCircuit(t *testing.T) {
	h, _, client := newOps(t, true)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, upstream.URL, http.NoBody)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	rec := httptest.NewRecorder()
	h.SystemStatus(rec, httptest.NewRequest(http.MethodGet, "/ops/status", http.NoBody))

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))

	assert.Equal(t, models.HealthStatusFail, status.Status)
	require.Len(t, status.Providers, 1)
	assert.Equal(t, models.HealthStatusFail, status.Providers[0].Status)
	assert.Equal(t, "open", status.Providers[0].CircuitState)
	require.NotNil(t, status.Providers[0].Message)
	assert.Contains(t, *status.Providers[0].Message, "Bad Gateway")
	require.NotNil(t, status.Providers[0].LastStatusCode)
	assert.Equal(t, http.StatusBadGateway, *status.Providers[0].LastStatusCode)
	assert.Equal(t, int64(10000), status.Providers[0].TimeoutMs)
}

func TestOpsHandler_SystemStatus_MissingAPIKey(t *testing.T) {
	h, _, _ := newOps(t, false)

	rec := httptest.NewRecorder()
	h.SystemStatus(rec, httptest.NewRequest(http.MethodGet, "/ops/status", http.NoBody))

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))

	assert.Equal(t, models.HealthStatusFail, status.Status)
	assert.Equal(t, "provider-credentials", status.Subsystems[1].Name)
	assert.Equal(t, models.HealthStatusFail, status.Subsystems[1].Status)
}
