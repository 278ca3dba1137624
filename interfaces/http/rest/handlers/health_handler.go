package handlers

import (
	"context"
	"net/http"
	"time"

	"memoryhub/pkg/utils"

	"go.uber.org/zap"
)

const (
	serviceName    = "Memory Orchestration Platform"
	serviceVersion = "2.0.0"
)

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// HealthHandler serves the service banner and the probe endpoints
type HealthHandler struct {
	recallConfigured bool
	storageBackend   string
	checks           map[string]ReadinessCheck
	logger           *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(recallConfigured bool, storageBackend string, checks map[string]ReadinessCheck, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		recallConfigured: recallConfigured,
		storageBackend:   storageBackend,
		checks:           checks,
		logger:           logger,
	}
}

// Root handles GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"service":   serviceName,
		"version":   serviceVersion,
		"status":    "running",
		"timestamp": utils.NowRFC3339(),
	}, h.logger)
}

// Health handles GET /health. The service stays up without the recall
// service but reports itself degraded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.recallConfigured {
		status = "degraded"
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": utils.NowRFC3339(),
		"services": map[string]interface{}{
			"recall":  h.recallConfigured,
			"storage": h.storageBackend,
		},
	}, h.logger)
}

// Ready handles GET /ready by running every readiness check
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(h.checks))
	ready := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("Readiness check failed", zap.String("check", name), zap.Error(err))
			results[name] = err.Error()
			ready = false
			continue
		}
		results[name] = "ok"
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": results,
	}, h.logger)
}
