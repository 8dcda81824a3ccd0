package handler

import (
	"net/http"
	"strconv"

	"github.com/jonboulle/clockwork"

	"github.com/rainparis/rainparis/internal/api/models"
	"github.com/rainparis/rainparis/internal/api/response"
	"github.com/rainparis/rainparis/internal/provider/resilience"
	"github.com/rainparis/rainparis/internal/region"
)

// OpsConfig configures the operational endpoints.
type OpsConfig struct {
	Version   string
	BuildTime string

	// Registry reports the weather provider's circuit breaker state.
	Registry *resilience.Registry

	// Catalog is checked by the status endpoint (default: built-in catalog).
	Catalog *region.Catalog

	// APIKeyConfigured reports whether the provider credential is set.
	APIKeyConfigured bool

	// Clock stamps responses (optional, defaults to the real clock).
	Clock clockwork.Clock
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version          string
	buildTime        string
	registry         *resilience.Registry
	catalog          *region.Catalog
	apiKeyConfigured bool
	clock            clockwork.Clock
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = region.Default()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = resilience.NewRegistryWithClock(clock)
	}

	return &OpsHandler{
		version:          cfg.Version,
		buildTime:        cfg.BuildTime,
		registry:         registry,
		catalog:          catalog,
		apiKeyConfigured: cfg.APIKeyConfigured,
		clock:            clock,
	}
}

// HealthCheck handles GET /ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.clock.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /ops/ready - readiness check.
// A missing API key only degrades readiness: the page and region list still
// work, and weather requests report the misconfiguration themselves.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(h.clock.Now()),
	}
	if !h.apiKeyConfigured {
		health.Status = models.HealthStatusDegraded
		health.Details = map[string]interface{}{"weatherProvider": "API key not configured"}
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	catalogDetail := strconv.Itoa(h.catalog.Len()) + " regions"
	subsystems := []models.SubsystemStatus{
		{Name: "region-catalog", Status: models.HealthStatusOK, Detail: &catalogDetail},
	}

	credentials := models.SubsystemStatus{Name: "provider-credentials", Status: models.HealthStatusOK}
	if !h.apiKeyConfigured {
		detail := "API key not configured"
		credentials.Status = models.HealthStatusFail
		credentials.Detail = &detail
	}
	subsystems = append(subsystems, credentials)

	providers := make([]models.ProviderStatus, 0, h.registry.Len())
	for _, ph := range h.registry.Snapshot() {
		providers = append(providers, toProviderStatus(ph))
	}

	status := models.SystemStatus{
		Status:     overallStatus(subsystems, providers),
		Time:       models.Timestamp(h.clock.Now()),
		Subsystems: subsystems,
		Providers:  providers,
	}
	response.JSON(w, r, http.StatusOK, status)
}

func toProviderStatus(ph *resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:            ph.Name,
		Status:              models.HealthStatusOK,
		CircuitState:        ph.CircuitState.String(),
		ConsecutiveFailures: ph.Counts.ConsecutiveFailures,
		TimeoutMs:           ph.Timeout.Milliseconds(),
	}

	switch ph.Level() {
	case resilience.LevelDown:
		ps.Status = models.HealthStatusFail
	case resilience.LevelProbing:
		ps.Status = models.HealthStatusDegraded
	}

	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	if ph.LastStatusCode != 0 {
		code := ph.LastStatusCode
		ps.LastStatusCode = &code
	}
	return ps
}

// overallStatus is FAIL if anything failed, DEGRADED if anything is
// degraded, otherwise OK.
func overallStatus(subsystems []models.SubsystemStatus, providers []models.ProviderStatus) models.HealthStatus {
	worst := models.HealthStatusOK
	consider := func(s models.HealthStatus) {
		switch {
		case s == models.HealthStatusFail:
			worst = models.HealthStatusFail
		case s == models.HealthStatusDegraded && worst == models.HealthStatusOK:
			worst = models.HealthStatusDegraded
		}
	}
	for _, s := range subsystems {
		consider(s.Status)
	}
	for _, p := range providers {
		consider(p.Status)
	}
	return worst
}
