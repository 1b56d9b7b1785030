// Package jobs defines the scheduled jobs for fund data collection,
// ranking and housekeeping.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/fundranker/internal/pipeline"
	"github.com/wonny/fundranker/pkg/logger"
)

// RankingJob runs the full ranking pipeline once a week, after the
// last NAVs of the trading week have been published.
type RankingJob struct {
	orchestrator *pipeline.Orchestrator
	template     pipeline.RunConfig
	logger       *logger.Logger
}

// NewRankingJob creates the weekly ranking job. The template carries
// strategy config provenance; run id and date are set per execution.
func NewRankingJob(orch *pipeline.Orchestrator, template pipeline.RunConfig, log *logger.Logger) *RankingJob {
	return &RankingJob{
		orchestrator: orch,
		template:     template,
		logger:       log.WithField("job", "weekly_ranking"),
	}
}

// Name returns the job identifier.
func (j *RankingJob) Name() string {
	return "weekly_ranking"
}

// Schedule returns the cron expression.
func (j *RankingJob) Schedule() string {
	return "0 0 2 * * 6" // Every Saturday at 2:00 AM
}

// Run executes a full pipeline run with a fresh run id and date.
func (j *RankingJob) Run(ctx context.Context) error {
	j.logger.Info("Starting weekly ranking run")

	config := j.template
	config.RunID = ""
	config.Date = time.Time{}

	result, err := j.orchestrator.Run(ctx, config)
	if err != nil {
		return fmt.Errorf("ranking run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"results":  len(result.Results),
		"errors":   len(result.Errors),
		"duration": result.Duration.Seconds(),
	}).Info("Weekly ranking run completed")

	return nil
}
