package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/fundranker/internal/api/handlers"
	"github.com/wonny/fundranker/pkg/logger"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(
	health *handlers.HealthHandler,
	rankings *handlers.RankingsHandler,
	funds *handlers.FundsHandler,
	cache *handlers.CacheHandler,
	pipe *handlers.PipelineHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", health.Check).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Ranking endpoints
	api.HandleFunc("/rankings/{category}", rankings.GetRankings).Methods("GET")

	// Fund endpoints
	api.HandleFunc("/funds/{schemeCode}/metrics", funds.GetMetrics).Methods("GET")

	// Cache endpoints
	api.HandleFunc("/cache/stats", cache.GetStats).Methods("GET")
	api.HandleFunc("/cache/clear", cache.Clear).Methods("POST")

	// Pipeline endpoints
	api.HandleFunc("/pipeline/run", pipe.Run).Methods("POST")
	api.HandleFunc("/runs", pipe.GetRuns).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
