package selection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/scoring"
	"github.com/wonny/fundranker/pkg/config"
	"github.com/wonny/fundranker/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

func testRanker(t *testing.T, topN int, strategies ...scoring.Strategy) *Ranker {
	t.Helper()
	if len(strategies) == 0 {
		strategies = scoring.DefaultStrategies()
	}
	scorer, err := scoring.NewScorer(strategies, testLogger())
	require.NoError(t, err)
	return NewRanker(scorer, topN, testLogger())
}

func returnBundle(code string, ret1y float64, spanDays int) *contracts.MetricsBundle {
	return &contracts.MetricsBundle{
		SchemeCode: code,
		Name:       "Fund " + code,
		SpanDays:   spanDays,
		Return1Y:   contracts.Float64Ptr(ret1y),
	}
}

func TestRanker_Rank(t *testing.T) {
	strategy := scoring.Strategy{
		Name:    "returns-only",
		Weights: map[string]float64{contracts.MetricReturn1Y: 1.0},
	}
	ranker := testRanker(t, 2, strategy)

	bundles := []*contracts.MetricsBundle{
		returnBundle("A", 10, 1000),
		returnBundle("B", 25, 1000),
		returnBundle("C", 17, 1000),
	}

	result, err := ranker.Rank(context.Background(), "smallcap", "returns-only", bundles)
	require.NoError(t, err)

	require.Len(t, result.Funds, 3)
	assert.Equal(t, "B", result.Funds[0].SchemeCode)
	assert.Equal(t, "C", result.Funds[1].SchemeCode)
	assert.Equal(t, "A", result.Funds[2].SchemeCode)

	for i, fund := range result.Funds {
		assert.Equal(t, i+1, fund.Rank)
	}

	assert.Equal(t, 2, result.TopN)
	top := result.Top()
	require.Len(t, top, 2)
	assert.Equal(t, "B", top[0].SchemeCode)
}

func TestRanker_Rank_TieBreaks(t *testing.T) {
	strategy := scoring.Strategy{
		Name:    "returns-only",
		Weights: map[string]float64{contracts.MetricReturn1Y: 1.0},
	}
	ranker := testRanker(t, 5, strategy)

	// Identical returns normalize to identical scores; the longer
	// history wins, then the lower scheme code.
	bundles := []*contracts.MetricsBundle{
		returnBundle("300", 10, 400),
		returnBundle("100", 10, 400),
		returnBundle("200", 10, 900),
	}

	result, err := ranker.Rank(context.Background(), "hybrid", "returns-only", bundles)
	require.NoError(t, err)

	require.Len(t, result.Funds, 3)
	assert.Equal(t, "200", result.Funds[0].SchemeCode, "longest history ranks first on ties")
	assert.Equal(t, "100", result.Funds[1].SchemeCode, "scheme code ascending breaks remaining ties")
	assert.Equal(t, "300", result.Funds[2].SchemeCode)
}

func TestRanker_Rank_EmptyCohort(t *testing.T) {
	strategy := scoring.Strategy{
		Name:    "returns-only",
		Weights: map[string]float64{contracts.MetricReturn3Y: 1.0},
	}
	ranker := testRanker(t, 5, strategy)

	// No fund carries the strategy's metric
	bundles := []*contracts.MetricsBundle{
		returnBundle("A", 10, 400),
	}

	_, err := ranker.Rank(context.Background(), "debt", "returns-only", bundles)
	assert.ErrorIs(t, err, ErrEmptyCohort)
}

func TestRanker_Rank_UnscorableBecomeErrors(t *testing.T) {
	strategy := scoring.Strategy{
		Name:    "returns-only",
		Weights: map[string]float64{contracts.MetricReturn3Y: 1.0},
	}
	ranker := testRanker(t, 5, strategy)

	bundles := []*contracts.MetricsBundle{
		{SchemeCode: "old", Return3Y: contracts.Float64Ptr(30), SpanDays: 1500},
		returnBundle("young", 12, 200),
	}

	result, err := ranker.Rank(context.Background(), "midcap", "returns-only", bundles)
	require.NoError(t, err)

	require.Len(t, result.Funds, 1)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "young", result.Errors[0].SchemeCode)
	assert.Equal(t, contracts.StageScoring, result.Errors[0].Stage)
}

func TestRanker_RankAll(t *testing.T) {
	ranker := testRanker(t, 5)

	// Only 1Y history: the returns strategy can score it, and so can
	// the comprehensive strategy through its 1Y weight.
	bundles := []*contracts.MetricsBundle{
		returnBundle("A", 10, 400),
		returnBundle("B", 20, 400),
	}

	results, err := ranker.RankAll(context.Background(), "index", bundles)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRanker_RankAll_PartialFailure(t *testing.T) {
	strategies := []scoring.Strategy{
		{Name: "one-year", Weights: map[string]float64{contracts.MetricReturn1Y: 1.0}},
		{Name: "ten-year", Weights: map[string]float64{contracts.MetricReturn10Y: 1.0}},
	}
	ranker := testRanker(t, 5, strategies...)

	bundles := []*contracts.MetricsBundle{
		returnBundle("A", 10, 400),
	}

	results, err := ranker.RankAll(context.Background(), "sectoral", bundles)
	require.Len(t, results, 1, "the scorable strategy must still produce a result")
	assert.Equal(t, "one-year", results[0].Strategy)
	assert.ErrorIs(t, err, ErrEmptyCohort)
}

func TestNewRanker_DefaultTopN(t *testing.T) {
	ranker := testRanker(t, 0)
	assert.Equal(t, DefaultTopN, ranker.TopN())
}
