package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/wonny/fundranker/internal/pipeline"
	"github.com/wonny/fundranker/internal/recorder"
	"github.com/wonny/fundranker/pkg/logger"
)

// runTimeout bounds a pipeline run triggered over HTTP.
const runTimeout = time.Hour

// PipelineHandler triggers pipeline runs and serves run history.
type PipelineHandler struct {
	orch     *pipeline.Orchestrator
	history  recorder.Recorder
	template pipeline.RunConfig
	logger   *logger.Logger

	mu      sync.Mutex
	running bool
}

// NewPipelineHandler creates a new pipeline handler. template carries
// the config provenance fields stamped onto every triggered run.
func NewPipelineHandler(orch *pipeline.Orchestrator, history recorder.Recorder, template pipeline.RunConfig, log *logger.Logger) *PipelineHandler {
	if history == nil {
		history = recorder.NewNoopRecorder()
	}
	return &PipelineHandler{
		orch:     orch,
		history:  history,
		template: template,
		logger:   log,
	}
}

// RunRequest is the body of a pipeline trigger.
type RunRequest struct {
	Date       string   `json:"date"` // YYYY-MM-DD, defaults to today
	Categories []string `json:"categories"`
	DryRun     bool     `json:"dry_run"`
}

// Run starts a pipeline run in the background. Only one run may be in
// flight at a time.
// POST /api/pipeline/run
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date, want YYYY-MM-DD: "+req.Date)
			return
		}
		date = parsed
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		respondError(w, http.StatusConflict, "A pipeline run is already in progress")
		return
	}
	h.running = true
	h.mu.Unlock()

	config := h.template
	config.RunID = pipeline.GenerateRunID()
	config.Date = date
	config.Categories = req.Categories
	config.DryRun = req.DryRun

	go func() {
		defer func() {
			h.mu.Lock()
			h.running = false
			h.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		if _, err := h.orch.Run(ctx, config); err != nil {
			h.logger.WithError(err).WithField("run_id", config.RunID).Error("Triggered pipeline run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"run_id": config.RunID,
			"status": "started",
		},
	})
}

// GetRuns returns the most recent pipeline runs.
// GET /api/runs?limit=10
func (h *PipelineHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit: "+raw)
			return
		}
		limit = parsed
	}

	runs, err := h.history.RecentRuns(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to read run history")
		respondError(w, http.StatusInternalServerError, "Failed to read run history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count": len(runs),
			"runs":  runs,
		},
	})
}
