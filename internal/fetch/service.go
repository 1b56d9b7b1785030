package fetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/navcache"
	"github.com/wonny/fundranker/pkg/logger"
)

// Config holds fetch orchestration settings
type Config struct {
	Workers   int           // Number of concurrent workers
	Freshness time.Duration // Cache entries younger than this are not refetched
}

// DefaultWorkers bounds concurrency; the upstream budget is enforced
// by the HTTP client's rate limiter, not here.
const DefaultWorkers = 4

// Service orchestrates NAV collection: cache first, API on miss,
// stale data as a fallback when the API fails.
type Service struct {
	source contracts.NAVSource
	store  navcache.Store
	repo   contracts.NAVRepository // nil when persistence is off
	config Config
	logger *logger.Logger
}

// Result is the outcome of fetching one scheme.
type Result struct {
	SchemeCode string
	Rows       int
	FromCache  bool
	Stale      bool
	Error      error
}

// NewService creates a new fetch Service. repo may be nil.
func NewService(source contracts.NAVSource, store navcache.Store, repo contracts.NAVRepository, cfg Config, log *logger.Logger) *Service {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	return &Service{
		source: source,
		store:  store,
		repo:   repo,
		config: cfg,
		logger: log.WithField("module", "fetch"),
	}
}

// Funds returns the fund master list, from cache when fresh.
func (s *Service) Funds(ctx context.Context) ([]contracts.Fund, error) {
	funds, fetchedAt, err := s.store.FundList(ctx)
	if err == nil && time.Since(fetchedAt) <= s.config.Freshness {
		s.logger.WithFields(map[string]interface{}{
			"count":      len(funds),
			"fetched_at": fetchedAt.Format("2006-01-02"),
		}).Debug("Fund list served from cache")
		return funds, nil
	}

	fresh, fetchErr := s.source.ListFunds(ctx)
	if fetchErr != nil {
		// Stale list beats no list
		if err == nil {
			s.logger.WithError(fetchErr).Warn("Fund list fetch failed, using stale cache")
			return funds, nil
		}
		return nil, fetchErr
	}

	if err := s.store.PutFundList(ctx, fresh); err != nil {
		s.logger.WithError(err).Warn("Failed to cache fund list")
	}
	return fresh, nil
}

// Series returns one scheme's NAV history, from cache when fresh.
func (s *Service) Series(ctx context.Context, schemeCode string) (*contracts.CacheEntry, error) {
	result, entry := s.fetchOne(ctx, schemeCode)
	if result.Error != nil {
		return nil, result.Error
	}
	return entry, nil
}

// FetchAll collects NAV series for every fund using a worker pool and
// reports how the batch went. The returned map holds one series per
// scheme that could be served; failed schemes are absent.
func (s *Service) FetchAll(ctx context.Context, funds []contracts.Fund) (map[string]*contracts.PriceSeries, *contracts.FetchReport, []Result) {
	s.logger.WithFields(map[string]interface{}{
		"fund_count": len(funds),
		"workers":    s.config.Workers,
	}).Info("Starting NAV collection")

	type fetched struct {
		result Result
		entry  *contracts.CacheEntry
	}

	fundCh := make(chan contracts.Fund, len(funds))
	resultCh := make(chan fetched, len(funds))

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for fund := range fundCh {
				select {
				case <-ctx.Done():
					resultCh <- fetched{result: Result{SchemeCode: fund.SchemeCode, Error: ctx.Err()}}
					continue
				default:
				}

				result, entry := s.fetchOne(ctx, fund.SchemeCode)
				if result.Error != nil {
					s.logger.WithError(result.Error).WithFields(map[string]interface{}{
						"worker":      workerID,
						"scheme_code": fund.SchemeCode,
					}).Error("Failed to fetch NAV history")
				}
				resultCh <- fetched{result: result, entry: entry}
			}
		}(i)
	}

	for _, fund := range funds {
		fundCh <- fund
	}
	close(fundCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	series := make(map[string]*contracts.PriceSeries, len(funds))
	results := make([]Result, 0, len(funds))
	report := &contracts.FetchReport{
		Date:   time.Now(),
		Total:  len(funds),
		Failed: make(map[string]string),
	}

	for f := range resultCh {
		results = append(results, f.result)
		switch {
		case f.result.Error != nil:
			report.Failed[f.result.SchemeCode] = f.result.Error.Error()
		case f.result.Stale:
			report.Stale = append(report.Stale, f.result.SchemeCode)
			series[f.result.SchemeCode] = f.entry.Series
		case f.result.FromCache:
			report.FromCache++
			series[f.result.SchemeCode] = f.entry.Series
		default:
			report.Fetched++
			series[f.result.SchemeCode] = f.entry.Series
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"total":      report.Total,
		"fetched":    report.Fetched,
		"from_cache": report.FromCache,
		"stale":      len(report.Stale),
		"failed":     len(report.Failed),
	}).Info("NAV collection completed")

	return series, report, results
}

// fetchOne serves a single scheme cache-first.
func (s *Service) fetchOne(ctx context.Context, schemeCode string) (Result, *contracts.CacheEntry) {
	now := time.Now()

	cached, cacheErr := s.store.Get(ctx, schemeCode)
	if cacheErr == nil && cached.Fresh(now, s.config.Freshness) {
		return Result{SchemeCode: schemeCode, Rows: cached.Rows, FromCache: true}, cached
	}
	if cacheErr != nil && !errors.Is(cacheErr, contracts.ErrNotCached) {
		return Result{SchemeCode: schemeCode, Error: cacheErr}, nil
	}

	series, err := s.source.FetchSeries(ctx, schemeCode)
	if err != nil {
		// A stale series still carries signal; prefer it over nothing
		if cached != nil {
			s.logger.WithError(err).WithField("scheme_code", schemeCode).
				Warn("Fetch failed, serving stale cache entry")
			return Result{SchemeCode: schemeCode, Rows: cached.Rows, FromCache: true, Stale: true}, cached
		}
		return Result{SchemeCode: schemeCode, Error: err}, nil
	}

	if err := s.store.Put(ctx, schemeCode, series); err != nil {
		s.logger.WithError(err).WithField("scheme_code", schemeCode).
			Warn("Failed to cache NAV series")
	}
	if s.repo != nil {
		if err := s.repo.SaveSeries(ctx, schemeCode, series); err != nil {
			s.logger.WithError(err).WithField("scheme_code", schemeCode).
				Warn("Failed to persist NAV series")
		}
	}

	entry := &contracts.CacheEntry{
		SchemeCode: schemeCode,
		Series:     series,
		FetchedAt:  now,
		Rows:       series.Len(),
		From:       series.First().Date,
		To:         series.Latest().Date,
	}
	return Result{SchemeCode: schemeCode, Rows: series.Len()}, entry
}
