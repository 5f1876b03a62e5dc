// Package handler provides HTTP handlers for the statuscope local API.
package handler

import (
	"net/http"
	"time"

	"github.com/statuscope/statuscope/internal/api/models"
	"github.com/statuscope/statuscope/internal/api/response"
	"github.com/statuscope/statuscope/internal/dashboard"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version    string
	buildTime  string
	reconciler *dashboard.Reconciler
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, reconciler *dashboard.Reconciler) *OpsHandler {
	return &OpsHandler{
		version:    version,
		buildTime:  buildTime,
		reconciler: reconciler,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The daemon
// is degraded while it has never managed to load anything from the
// backend.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.reconciler.Snapshot()

	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now(),
		Details: map[string]any{
			"loadedProducts": snap.LoadedCount,
			"page":           snap.Page,
			"totalPages":     snap.TotalPages,
		},
	}
	if snap.Error != "" && snap.LoadedCount == 0 {
		health.Status = models.HealthStatusDegraded
		health.Details["error"] = snap.Error
	}
	response.JSON(w, r, http.StatusOK, health)
}
