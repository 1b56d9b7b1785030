// Package pipeline wires fund discovery, classification, NAV
// collection, metrics and ranking into one orchestrated run.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/export"
	"github.com/wonny/fundranker/internal/fetch"
	"github.com/wonny/fundranker/internal/metrics"
	"github.com/wonny/fundranker/internal/recorder"
	"github.com/wonny/fundranker/internal/selection"
	"github.com/wonny/fundranker/internal/universe"
	"github.com/wonny/fundranker/pkg/logger"
	"github.com/wonny/fundranker/pkg/redis"
)

// Orchestrator coordinates the six-stage ranking pipeline.
type Orchestrator struct {
	// Stage components
	fetcher  *fetch.Service
	builder  *universe.Builder
	engine   *metrics.Engine
	ranker   *selection.Ranker
	exporter *export.Exporter

	// Output sinks
	history  recorder.Recorder
	rankings contracts.RankingRepository
	cache    *redis.Cache

	logger *logger.Logger
}

// RunConfig holds configuration for a pipeline run.
type RunConfig struct {
	RunID      string
	Date       time.Time
	ConfigID   string
	ConfigHash string
	Categories []string // empty means every classified category
	DryRun     bool     // if true, skip the publish stage
}

// RunResult holds the results of a complete pipeline run.
type RunResult struct {
	RunID           string
	Date            time.Time
	Success         bool
	Error           error
	CompletedStages []string
	FundTotal       int            // size of the scheme master list
	CohortSizes     map[string]int // eligible funds per category
	FetchReport     *contracts.FetchReport
	Bundles         map[string]*contracts.MetricsBundle
	Results         []*contracts.RankingResult
	Errors          []contracts.FundError
	ExportPaths     []string
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator. exporter, rankings and
// cache may be nil to disable file export, DB persistence and cache
// invalidation; a nil history falls back to the no-op recorder.
func NewOrchestrator(
	fetcher *fetch.Service,
	builder *universe.Builder,
	engine *metrics.Engine,
	ranker *selection.Ranker,
	exporter *export.Exporter,
	history recorder.Recorder,
	rankings contracts.RankingRepository,
	cache *redis.Cache,
	log *logger.Logger,
) *Orchestrator {
	if history == nil {
		history = recorder.NewNoopRecorder()
	}
	return &Orchestrator{
		fetcher:  fetcher,
		builder:  builder,
		engine:   engine,
		ranker:   ranker,
		exporter: exporter,
		history:  history,
		rankings: rankings,
		cache:    cache,
		logger:   log.WithField("module", "pipeline"),
	}
}

// Run executes the complete pipeline:
// S1 Funds → S2 Universe → S3 NAV → S4 Metrics → S5 Ranking → S6 Publish.
// Per-fund and per-category failures are collected on the result;
// only a failure that leaves nothing to rank aborts the run.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()
	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}
	if config.Date.IsZero() {
		config.Date = time.Now().UTC()
	}

	result := &RunResult{
		RunID:           config.RunID,
		Date:            config.Date,
		CompletedStages: make([]string, 0),
		CohortSizes:     make(map[string]int),
		Bundles:         make(map[string]*contracts.MetricsBundle),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"date":        config.Date.Format("2006-01-02"),
		"config_id":   config.ConfigID,
		"config_hash": config.ConfigHash,
		"categories":  config.Categories,
		"dry_run":     config.DryRun,
	}).Info("Starting pipeline run")

	defer func() {
		if result.Duration == 0 {
			result.Duration = time.Since(startTime)
		}
		o.recordHistory(config, result, startTime)
	}()

	// S1: Fund Discovery
	funds, err := o.runFunds(ctx)
	if err != nil {
		result.Error = fmt.Errorf("S1 failed: %w", err)
		return result, result.Error
	}
	result.FundTotal = len(funds)
	result.CompletedStages = append(result.CompletedStages, "S1:Funds")

	// S2: Universe Classification
	cohorts, err := o.runUniverse(config, funds)
	if err != nil {
		result.Error = fmt.Errorf("S2 failed: %w", err)
		return result, result.Error
	}
	for category, cohort := range cohorts {
		result.CohortSizes[category] = cohort.Count()
	}
	result.CompletedStages = append(result.CompletedStages, "S2:Universe")

	// S3: NAV Collection
	seriesByScheme, err := o.runCollect(ctx, cohorts, result)
	if err != nil {
		result.Error = fmt.Errorf("S3 failed: %w", err)
		return result, result.Error
	}
	result.CompletedStages = append(result.CompletedStages, "S3:NAV")

	// S4: Metrics Computation
	byCategory, err := o.runMetrics(ctx, cohorts, seriesByScheme, result)
	if err != nil {
		result.Error = fmt.Errorf("S4 failed: %w", err)
		return result, result.Error
	}
	result.CompletedStages = append(result.CompletedStages, "S4:Metrics")

	// S5: Ranking
	results, err := o.runRanking(ctx, cohorts, byCategory, result)
	if err != nil {
		result.Error = fmt.Errorf("S5 failed: %w", err)
		return result, result.Error
	}
	result.Results = results
	result.CompletedStages = append(result.CompletedStages, "S5:Ranking")

	// S6: Publish (skip if dry run)
	if !config.DryRun {
		if err := o.runPublish(ctx, config, result); err != nil {
			result.Error = fmt.Errorf("S6 failed: %w", err)
			return result, result.Error
		}
		result.CompletedStages = append(result.CompletedStages, "S6:Publish")
	} else {
		o.logger.Info("Skipping S6:Publish (dry run mode)")
	}

	result.Success = true
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
		"results":  len(result.Results),
		"errors":   len(result.Errors),
	}).Info("Pipeline run completed")

	return result, nil
}

// runFunds executes S1: Fund Discovery.
func (o *Orchestrator) runFunds(ctx context.Context) ([]contracts.Fund, error) {
	o.logger.Info("Running S1: Fund Discovery")

	funds, err := o.fetcher.Funds(ctx)
	if err != nil {
		return nil, fmt.Errorf("fund list: %w", err)
	}
	if len(funds) == 0 {
		return nil, fmt.Errorf("fund list is empty")
	}

	o.logger.WithField("funds", len(funds)).Info("S1 completed")

	return funds, nil
}

// runUniverse executes S2: Universe Classification.
func (o *Orchestrator) runUniverse(config RunConfig, funds []contracts.Fund) (map[string]*contracts.Cohort, error) {
	o.logger.Info("Running S2: Universe Classification")

	cohorts := o.builder.Build(funds)
	for category, cohort := range cohorts {
		if cohort.Count() == 0 {
			delete(cohorts, category)
		}
	}

	if len(config.Categories) > 0 {
		selected := make(map[string]*contracts.Cohort, len(config.Categories))
		for _, category := range config.Categories {
			cohort, ok := cohorts[category]
			if !ok {
				o.logger.WithField("category", category).Warn("No eligible funds for requested category")
				continue
			}
			selected[category] = cohort
		}
		cohorts = selected
	}

	if len(cohorts) == 0 {
		return nil, fmt.Errorf("no eligible cohorts")
	}

	eligible := 0
	for _, cohort := range cohorts {
		eligible += cohort.Count()
	}
	o.logger.WithFields(map[string]interface{}{
		"categories": len(cohorts),
		"eligible":   eligible,
	}).Info("S2 completed")

	return cohorts, nil
}

// runCollect executes S3: NAV Collection over every cohort member.
// Fetch failures become per-fund errors on the result, not a stage
// failure; the stage fails only when no series came back at all.
func (o *Orchestrator) runCollect(ctx context.Context, cohorts map[string]*contracts.Cohort, result *RunResult) (map[string]*contracts.PriceSeries, error) {
	o.logger.Info("Running S3: NAV Collection")

	var members []contracts.Fund
	for _, category := range sortedCategories(cohorts) {
		members = append(members, cohorts[category].Funds...)
	}

	seriesByScheme, report, _ := o.fetcher.FetchAll(ctx, members)
	result.FetchReport = report

	failed := make([]string, 0, len(report.Failed))
	for code := range report.Failed {
		failed = append(failed, code)
	}
	sort.Strings(failed)
	for _, code := range failed {
		result.Errors = append(result.Errors, contracts.FundError{
			SchemeCode: code,
			Stage:      contracts.StageFetch,
			Message:    report.Failed[code],
		})
	}

	if len(seriesByScheme) == 0 {
		return nil, fmt.Errorf("no NAV series available: %d of %d funds failed", len(report.Failed), report.Total)
	}

	o.logger.WithFields(map[string]interface{}{
		"fetched":    report.Fetched,
		"from_cache": report.FromCache,
		"stale":      len(report.Stale),
		"failed":     len(report.Failed),
	}).Info("S3 completed")

	return seriesByScheme, nil
}

// runMetrics executes S4: Metrics Computation per cohort fund.
func (o *Orchestrator) runMetrics(ctx context.Context, cohorts map[string]*contracts.Cohort, seriesByScheme map[string]*contracts.PriceSeries, result *RunResult) (map[string][]*contracts.MetricsBundle, error) {
	o.logger.Info("Running S4: Metrics Computation")

	byCategory := make(map[string][]*contracts.MetricsBundle, len(cohorts))
	for _, category := range sortedCategories(cohorts) {
		for _, fund := range cohorts[category].Funds {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			series, ok := seriesByScheme[fund.SchemeCode]
			if !ok {
				// Fetch failure, already on the result.
				continue
			}

			bundle, err := o.engine.Compute(ctx, fund, series)
			if err != nil {
				result.Errors = append(result.Errors, contracts.FundError{
					SchemeCode: fund.SchemeCode,
					Stage:      contracts.StageMetrics,
					Message:    err.Error(),
				})
				continue
			}

			byCategory[category] = append(byCategory[category], bundle)
			result.Bundles[fund.SchemeCode] = bundle
		}
	}

	if len(result.Bundles) == 0 {
		return nil, fmt.Errorf("no fund produced a metrics bundle")
	}

	o.logger.WithFields(map[string]interface{}{
		"funds":      len(result.Bundles),
		"categories": len(byCategory),
	}).Info("S4 completed")

	return byCategory, nil
}

// runRanking executes S5: Ranking per category. A category that cannot
// be ranked is recorded on the result and skipped; the stage fails only
// when every category comes up empty.
func (o *Orchestrator) runRanking(ctx context.Context, cohorts map[string]*contracts.Cohort, byCategory map[string][]*contracts.MetricsBundle, result *RunResult) ([]*contracts.RankingResult, error) {
	o.logger.Info("Running S5: Ranking")

	var results []*contracts.RankingResult
	for _, category := range sortedCategories(cohorts) {
		bundles := byCategory[category]
		if len(bundles) == 0 {
			o.logger.WithField("category", category).Warn("No metric bundles for category")
			result.Errors = append(result.Errors, contracts.FundError{
				Stage:   contracts.StageRanking,
				Message: fmt.Sprintf("category %s: no metric bundles", category),
			})
			continue
		}

		ranked, err := o.ranker.RankAll(ctx, category, bundles)
		if err != nil {
			o.logger.WithError(err).WithField("category", category).Warn("Ranking incomplete for category")
			result.Errors = append(result.Errors, contracts.FundError{
				Stage:   contracts.StageRanking,
				Message: err.Error(),
			})
		}
		results = append(results, ranked...)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no category produced a ranking")
	}

	o.logger.WithField("results", len(results)).Info("S5 completed")

	return results, nil
}

// runPublish executes S6: Publish. Ranking results go to the repository
// and export files; stale cache keys are invalidated afterwards.
func (o *Orchestrator) runPublish(ctx context.Context, config RunConfig, result *RunResult) error {
	o.logger.Info("Running S6: Publish")

	if o.rankings != nil {
		for _, res := range result.Results {
			if err := o.rankings.SaveResult(ctx, res); err != nil {
				return fmt.Errorf("save ranking %s/%s: %w", res.Category, res.Strategy, err)
			}
		}
	}

	if o.exporter != nil {
		csvPath, err := o.exporter.WriteCSV(result.Results, result.Bundles, config.Date)
		if err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		xlsxPath, err := o.exporter.WriteXLSX(result.Results, result.Bundles, config.Date)
		if err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		result.ExportPaths = append(result.ExportPaths, csvPath, xlsxPath)
	}

	if o.cache != nil {
		for _, res := range result.Results {
			if err := o.cache.Delete(ctx, redis.RankingKey(res.Category, res.Strategy)); err != nil {
				o.logger.WithError(err).WithFields(map[string]interface{}{
					"category": res.Category,
					"strategy": res.Strategy,
				}).Warn("Failed to invalidate ranking cache")
			}
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"results": len(result.Results),
		"exports": len(result.ExportPaths),
	}).Info("S6 completed")

	return nil
}

// recordHistory writes the run outcome to the history recorder.
// History write failures are logged, not returned.
func (o *Orchestrator) recordHistory(config RunConfig, result *RunResult, startTime time.Time) {
	cohortErrors := 0
	for _, res := range result.Results {
		cohortErrors += len(res.Errors)
	}

	status := recorder.StatusCompleted
	switch {
	case result.Error != nil:
		status = recorder.StatusFailed
	case len(result.Errors)+cohortErrors > 0:
		status = recorder.StatusPartial
	}

	rec := &recorder.RunRecord{
		RunID:      config.RunID,
		Date:       config.Date,
		ConfigID:   config.ConfigID,
		ConfigHash: config.ConfigHash,
		TopN:       o.ranker.TopN(),
		DryRun:     config.DryRun,
		StartedAt:  startTime,
		FinishedAt: startTime.Add(result.Duration),
		Stages:     len(result.CompletedStages),
		Status:     status,
	}
	if err := o.history.RecordRun(rec); err != nil {
		o.logger.WithError(err).Warn("Failed to record run history")
		return
	}

	for _, res := range result.Results {
		out := &recorder.CohortOutcome{
			RunID:      config.RunID,
			Category:   res.Category,
			Strategy:   res.Strategy,
			CohortSize: result.CohortSizes[res.Category],
			Ranked:     len(res.Funds),
			Errors:     len(res.Errors),
		}
		if len(res.Funds) > 0 {
			out.TopScheme = res.Funds[0].SchemeCode
			out.TopScore = res.Funds[0].TotalScore
		}
		if err := o.history.RecordCohort(out); err != nil {
			o.logger.WithError(err).Warn("Failed to record cohort outcome")
		}
	}

	record := func(fundErr contracts.FundError) {
		e := &recorder.RunError{
			RunID:      config.RunID,
			SchemeCode: fundErr.SchemeCode,
			Stage:      string(fundErr.Stage),
			Message:    fundErr.Message,
		}
		if err := o.history.RecordError(e); err != nil {
			o.logger.WithError(err).Warn("Failed to record run error")
		}
	}
	for _, fundErr := range result.Errors {
		record(fundErr)
	}
	for _, res := range result.Results {
		for _, fundErr := range res.Errors {
			record(fundErr)
		}
	}
}

// sortedCategories returns the cohort map keys in stable order.
func sortedCategories(cohorts map[string]*contracts.Cohort) []string {
	names := make([]string, 0, len(cohorts))
	for name := range cohorts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenerateRunID generates a unique run ID.
func GenerateRunID() string {
	return fmt.Sprintf("run_%s_%s", time.Now().UTC().Format("20060102"), uuid.NewString()[:8])
}
