package handlers

import (
	"net/http"

	"github.com/wonny/fundranker/internal/navcache"
	"github.com/wonny/fundranker/pkg/logger"
)

// CacheHandler exposes the NAV cache for inspection and maintenance.
type CacheHandler struct {
	store  navcache.Store
	logger *logger.Logger
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(store navcache.Store, log *logger.Logger) *CacheHandler {
	return &CacheHandler{
		store:  store,
		logger: log,
	}
}

// GetStats returns cache entry counts and freshness.
// GET /api/cache/stats
func (h *CacheHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read cache stats")
		respondError(w, http.StatusInternalServerError, "Failed to read cache stats")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}

// Clear drops every cached NAV series and the fund list.
// POST /api/cache/clear
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to clear cache")
		respondError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	h.logger.Info("NAV cache cleared")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]bool{
			"cleared": true,
		},
	})
}
