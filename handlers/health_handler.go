package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/lejendary/oauth2-server/utils"
	"go.uber.org/zap"
)

// HealthChecker reports whether a dependency is usable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	database HealthChecker
	logger   *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. database may be nil.
func NewHealthHandler(database HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		database: database,
		logger:   logger,
	}
}

// HandleHealth handles GET /healthz. Liveness only.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{"database": "not_configured"}
	status, httpStatus := "healthy", http.StatusOK

	if h.database != nil {
		if err := h.database.HealthCheck(ctx); err != nil {
			h.logger.Warn("database health check failed", zap.Error(err))
			checks["database"] = "unhealthy"
			status, httpStatus = "unhealthy", http.StatusServiceUnavailable
		} else {
			checks["database"] = "healthy"
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	if err := utils.WriteJSON(w, httpStatus, utils.SuccessResponse{Data: response}); err != nil {
		h.logger.Error("failed to write readiness response", zap.Error(err))
	}
}
