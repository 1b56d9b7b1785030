package handlers

import (
	"net/http"

	"github.com/wonny/fundranker/pkg/database"
	"github.com/wonny/fundranker/pkg/logger"
	"github.com/wonny/fundranker/pkg/redis"
)

// HealthHandler reports service health including backing stores.
type HealthHandler struct {
	db     *database.DB
	redis  *redis.Client
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler. db and redis may be
// nil when those backends are disabled.
func NewHealthHandler(db *database.DB, redisClient *redis.Client, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: log,
	}
}

// Check returns server health status.
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := "ok"
	checks := make(map[string]interface{})

	if h.db != nil {
		dbStatus, err := h.db.HealthCheck(ctx)
		if err != nil {
			status = "degraded"
		}
		checks["database"] = dbStatus
	} else {
		checks["database"] = map[string]string{"status": "disabled"}
	}

	if h.redis != nil && h.redis.Enabled() {
		if err := h.redis.Redis().Ping(ctx).Err(); err != nil {
			status = "degraded"
			checks["redis"] = map[string]string{"status": "down", "error": err.Error()}
		} else {
			checks["redis"] = map[string]string{"status": "up"}
		}
	} else {
		checks["redis"] = map[string]string{"status": "disabled"}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  status,
		"service": "fundranker-api",
		"checks":  checks,
	})
}
