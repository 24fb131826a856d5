package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const healthCheckTimeout = 5 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports how many sessions are held in memory.
type SessionCounter interface {
	Len() int
}

// HealthHandler handles root and health check endpoints.
type HealthHandler struct {
	db       Pinger
	sessions SessionCounter
	version  string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db Pinger, sessions SessionCounter, version string) *HealthHandler {
	return &HealthHandler{db: db, sessions: sessions, version: version}
}

// RegisterRoutes registers the root and health routes.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
}

// Root describes the service.
func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"message": "WriteBot API",
		"version": h.version,
		"endpoints": map[string]string{
			"scenario":       "POST /api/onboarding/scenario",
			"session":        "GET /api/onboarding/session/{session_id}",
			"calls":          "GET /api/onboarding/session/{session_id}/calls",
			"exercise_start": "POST /api/onboarding/exercise/start",
			"exercise_chat":  "POST /api/onboarding/exercise/chat",
			"assessment":     "POST /api/onboarding/assessment",
			"health":         "GET /health",
		},
	})
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := map[string]any{
		"status":   "healthy",
		"checks":   checks,
		"sessions": h.sessions.Len(),
	}
	statusCode := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		status["status"] = "degraded"
		checks["database"] = "unreachable"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	JSON(w, statusCode, status)
}
