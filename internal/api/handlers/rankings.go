// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/scoring"
	"github.com/wonny/fundranker/internal/selection"
	"github.com/wonny/fundranker/pkg/logger"
	"github.com/wonny/fundranker/pkg/redis"
)

// RankingsHandler serves stored ranking results.
type RankingsHandler struct {
	repo            contracts.RankingRepository
	cache           *redis.Cache
	defaultStrategy string
	logger          *logger.Logger
}

// NewRankingsHandler creates a new rankings handler. An empty
// defaultStrategy falls back to the comprehensive strategy.
func NewRankingsHandler(repo contracts.RankingRepository, cache *redis.Cache, defaultStrategy string, log *logger.Logger) *RankingsHandler {
	if defaultStrategy == "" {
		defaultStrategy = scoring.StrategyComprehensive
	}
	return &RankingsHandler{
		repo:            repo,
		cache:           cache,
		defaultStrategy: defaultStrategy,
		logger:          log,
	}
}

// GetRankings returns the latest ranking for a category.
// GET /api/rankings/{category}?strategy=comprehensive
func (h *RankingsHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := mux.Vars(r)["category"]
	strategy := r.URL.Query().Get("strategy")
	if strategy == "" {
		strategy = h.defaultStrategy
	}

	if h.repo == nil {
		respondError(w, http.StatusServiceUnavailable, "Ranking storage is not configured")
		return
	}

	var result *contracts.RankingResult
	var err error
	if h.cache != nil {
		var cached contracts.RankingResult
		err = h.cache.GetOrSet(ctx, redis.RankingKey(category, strategy), &cached, redis.TTLShort, func() (interface{}, error) {
			return h.repo.GetLatest(ctx, category, strategy)
		})
		result = &cached
	} else {
		result, err = h.repo.GetLatest(ctx, category, strategy)
	}
	if errors.Is(err, selection.ErrNoResult) {
		respondError(w, http.StatusNotFound, "No ranking found for "+category+"/"+strategy)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"category": category,
			"strategy": strategy,
		}).Error("Failed to load ranking")
		respondError(w, http.StatusInternalServerError, "Failed to load ranking")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"category": category,
			"strategy": strategy,
			"count":    len(result.Funds),
			"ranking":  result,
		},
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
