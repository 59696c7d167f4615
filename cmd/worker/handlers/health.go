package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lecturalab/slide-worker/internal/observability"
)

// Version is the service version reported by the health endpoint.
const Version = "1.0.0"

// HealthHandler reports service readiness.
type HealthHandler struct {
	logger  *observability.Logger
	missing func() []string
}

// NewHealthHandler creates a health handler. missing reports required
// environment-backed settings that are absent.
func NewHealthHandler(logger *observability.Logger, missing func() []string) *HealthHandler {
	return &HealthHandler{
		logger:  logger,
		missing: missing,
	}
}

// HealthResponseDTO represents the health check response.
type HealthResponseDTO struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health handles GET /health. It returns 503 when any required
// configuration is missing so orchestrators hold traffic until the
// service can actually process jobs.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if missing := h.missing(); len(missing) > 0 {
		h.logger.Warn().Strs("missing", missing).Msg("Health check: missing env vars")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "unhealthy",
			"detail": "Missing env vars: " + strings.Join(missing, ", "),
		})
		return
	}

	json.NewEncoder(w).Encode(HealthResponseDTO{
		Status:  "healthy",
		Version: Version,
	})
}
