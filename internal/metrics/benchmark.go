package metrics

import (
	"context"
	"math"
	"strings"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/pkg/logger"
)

// SeriesProvider supplies a NAV series for a scheme code, typically
// backed by the cache.
type SeriesProvider interface {
	Series(ctx context.Context, schemeCode string) (*contracts.PriceSeries, error)
}

// BenchmarkRule maps a fund name keyword to a benchmark scheme.
type BenchmarkRule struct {
	Match  string // lowercase substring matched against the fund name
	Scheme string
	Name   string
}

// BenchmarkResolver picks the benchmark series for a fund: keyword
// rules first, then the category default.
type BenchmarkResolver struct {
	rules    []BenchmarkRule
	defaults map[string]BenchmarkRule // category: benchmark
	provider SeriesProvider
	logger   *logger.Logger
}

// NewBenchmarkResolver creates a resolver over the given rules.
func NewBenchmarkResolver(rules []BenchmarkRule, defaults map[string]BenchmarkRule, provider SeriesProvider, log *logger.Logger) *BenchmarkResolver {
	return &BenchmarkResolver{
		rules:    rules,
		defaults: defaults,
		provider: provider,
		logger:   log,
	}
}

// Resolve returns the benchmark series and display name for a fund.
// ok is false when no rule matches or the series cannot be loaded.
func (r *BenchmarkResolver) Resolve(ctx context.Context, fund contracts.Fund) (*contracts.PriceSeries, string, bool) {
	rule, found := r.pick(fund)
	if !found {
		return nil, "", false
	}

	series, err := r.provider.Series(ctx, rule.Scheme)
	if err != nil {
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"scheme_code": fund.SchemeCode,
			"benchmark":   rule.Name,
		}).Warn("Benchmark series unavailable")
		return nil, "", false
	}

	return series, rule.Name, true
}

// pick selects the first keyword rule matching the fund name, falling
// back to the category default.
func (r *BenchmarkResolver) pick(fund contracts.Fund) (BenchmarkRule, bool) {
	name := strings.ToLower(fund.Name)
	for _, rule := range r.rules {
		if rule.Match != "" && strings.Contains(name, rule.Match) {
			return rule, true
		}
	}

	rule, ok := r.defaults[fund.Category]
	return rule, ok
}

// Relative computes alpha and tracking error of a fund against its
// benchmark, in annualized percent. Returns are aligned on shared
// dates; both values are nil with fewer than 2 aligned returns.
func Relative(fund, bench *contracts.PriceSeries, periodsPerYear float64) (alpha, trackingError *float64) {
	diffs := alignedReturnDiffs(fund, bench)
	if len(diffs) < 2 {
		return nil, nil
	}

	a := mean(diffs) * periodsPerYear * 100
	te := stdDev(diffs) * math.Sqrt(periodsPerYear) * 100
	return contracts.Float64Ptr(a), contracts.Float64Ptr(te)
}

// alignedReturnDiffs computes fund minus benchmark returns over the
// dates both series share.
func alignedReturnDiffs(fund, bench *contracts.PriceSeries) []float64 {
	benchByDate := make(map[int64]float64, bench.Len())
	for _, p := range bench.Points() {
		benchByDate[dayKey(p.Date.Unix())] = p.NAV
	}

	var fundNAVs, benchNAVs []float64
	for _, p := range fund.Points() {
		if nav, ok := benchByDate[dayKey(p.Date.Unix())]; ok {
			fundNAVs = append(fundNAVs, p.NAV)
			benchNAVs = append(benchNAVs, nav)
		}
	}

	if len(fundNAVs) < 2 {
		return nil
	}

	diffs := make([]float64, 0, len(fundNAVs)-1)
	for i := 1; i < len(fundNAVs); i++ {
		fundRet := fundNAVs[i]/fundNAVs[i-1] - 1
		benchRet := benchNAVs[i]/benchNAVs[i-1] - 1
		diffs = append(diffs, fundRet-benchRet)
	}
	return diffs
}

// dayKey truncates a unix timestamp to its calendar day.
func dayKey(unix int64) int64 {
	return unix / 86400
}
