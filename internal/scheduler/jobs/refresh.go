package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/fetch"
	"github.com/wonny/fundranker/internal/universe"
	"github.com/wonny/fundranker/pkg/logger"
)

// NAVRefreshJob warms the NAV cache for every eligible fund ahead of
// the nightly ranking run, so the pipeline reads mostly from cache.
type NAVRefreshJob struct {
	fetcher *fetch.Service
	builder *universe.Builder
	logger  *logger.Logger
}

// NewNAVRefreshJob creates the cache warming job.
func NewNAVRefreshJob(fetcher *fetch.Service, builder *universe.Builder, log *logger.Logger) *NAVRefreshJob {
	return &NAVRefreshJob{
		fetcher: fetcher,
		builder: builder,
		logger:  log.WithField("job", "nav_refresh"),
	}
}

// Name returns the job identifier.
func (j *NAVRefreshJob) Name() string {
	return "nav_refresh"
}

// Schedule returns the cron expression.
func (j *NAVRefreshJob) Schedule() string {
	return "0 30 23 * * *" // Every day at 11:30 PM, after NAV publication
}

// Run refreshes the fund list and the NAV history of every fund that
// passes universe classification.
func (j *NAVRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting NAV refresh")

	funds, err := j.fetcher.Funds(ctx)
	if err != nil {
		return fmt.Errorf("fund list: %w", err)
	}

	var members []contracts.Fund
	for _, cohort := range j.builder.Build(funds) {
		members = append(members, cohort.Funds...)
	}
	if len(members) == 0 {
		return fmt.Errorf("no eligible funds to refresh")
	}

	_, report, _ := j.fetcher.FetchAll(ctx, members)
	if report.Fetched+report.FromCache == 0 {
		return fmt.Errorf("refresh served no series: %d of %d funds failed", len(report.Failed), report.Total)
	}

	j.logger.WithFields(map[string]interface{}{
		"funds":      report.Total,
		"fetched":    report.Fetched,
		"from_cache": report.FromCache,
		"stale":      len(report.Stale),
		"failed":     len(report.Failed),
	}).Info("NAV refresh completed")

	return nil
}
