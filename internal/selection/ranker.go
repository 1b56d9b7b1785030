package selection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/scoring"
	"github.com/wonny/fundranker/pkg/logger"
)

// ErrEmptyCohort is returned when a category has no scorable funds
// under a strategy.
var ErrEmptyCohort = errors.New("no scorable funds in cohort")

// DefaultTopN is the selection size when none is configured.
const DefaultTopN = 5

// Ranker orders cohort scores into ranking results.
type Ranker struct {
	scorer *scoring.Scorer
	topN   int
	logger *logger.Logger
}

// NewRanker creates a new ranker. topN values below 1 fall back to
// DefaultTopN.
func NewRanker(scorer *scoring.Scorer, topN int, log *logger.Logger) *Ranker {
	if topN < 1 {
		topN = DefaultTopN
	}
	return &Ranker{
		scorer: scorer,
		topN:   topN,
		logger: log,
	}
}

// Rank scores the cohort under one strategy and orders the funds by
// total score. Ties prefer the longer history, then the lower scheme
// code. Unscorable funds become per-fund errors on the result.
func (r *Ranker) Rank(ctx context.Context, category, strategy string, bundles []*contracts.MetricsBundle) (*contracts.RankingResult, error) {
	scores, unscorable, err := r.scorer.ScoreCohort(category, strategy, bundles)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("category %s strategy %s: %w", category, strategy, ErrEmptyCohort)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].TotalScore != scores[j].TotalScore {
			return scores[i].TotalScore > scores[j].TotalScore
		}
		if scores[i].SpanDays != scores[j].SpanDays {
			return scores[i].SpanDays > scores[j].SpanDays
		}
		return scores[i].SchemeCode < scores[j].SchemeCode
	})

	ranked := make([]contracts.RankedFund, len(scores))
	for i, s := range scores {
		ranked[i] = contracts.RankedFund{CohortScore: s, Rank: i + 1}
	}

	result := &contracts.RankingResult{
		Category:    category,
		Strategy:    strategy,
		GeneratedAt: time.Now(),
		TopN:        r.topN,
		Funds:       ranked,
	}

	for _, code := range unscorable {
		result.Errors = append(result.Errors, contracts.FundError{
			SchemeCode: code,
			Stage:      contracts.StageScoring,
			Message:    fmt.Sprintf("no usable metrics for strategy %s", strategy),
		})
	}

	r.logger.WithFields(map[string]interface{}{
		"category":  category,
		"strategy":  strategy,
		"funds":     len(ranked),
		"top_code":  ranked[0].SchemeCode,
		"top_score": ranked[0].TotalScore,
	}).Info("Ranking completed")

	return result, nil
}

// RankAll runs every configured strategy over the cohort. A strategy
// that cannot produce a result is reported in the joined error while
// the remaining results are still returned.
func (r *Ranker) RankAll(ctx context.Context, category string, bundles []*contracts.MetricsBundle) ([]*contracts.RankingResult, error) {
	var results []*contracts.RankingResult
	var errs []error

	for _, name := range r.scorer.StrategyNames() {
		result, err := r.Rank(ctx, category, name, bundles)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, result)
	}

	return results, errors.Join(errs...)
}

// TopN returns the configured selection size.
func (r *Ranker) TopN() int {
	return r.topN
}
