package metrics

import (
	"context"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/pkg/logger"
)

// Config controls metric computation.
type Config struct {
	RiskFreeRate  float64 // annual percent
	VolWeight     float64 // risk score volatility weight
	MDDWeight     float64 // risk score drawdown weight
	RollingWindow int     // consistency window in samples; 0 = one year
}

// DefaultConfig returns the standard computation parameters.
func DefaultConfig() Config {
	return Config{
		RiskFreeRate:  6.0,
		VolWeight:     2.0,
		MDDWeight:     0.5,
		RollingWindow: 0,
	}
}

// Engine computes metric bundles from NAV series.
type Engine struct {
	cfg        Config
	benchmarks *BenchmarkResolver // nil disables benchmark metrics
	logger     *logger.Logger
}

// NewEngine creates a metrics engine.
func NewEngine(cfg Config, benchmarks *BenchmarkResolver, log *logger.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		benchmarks: benchmarks,
		logger:     log,
	}
}

// Compute calculates every metric for a fund's NAV series. Metrics the
// history cannot support are left nil.
func (e *Engine) Compute(ctx context.Context, fund contracts.Fund, series *contracts.PriceSeries) (*contracts.MetricsBundle, error) {
	if series == nil || series.Len() == 0 {
		return nil, contracts.ErrEmptySeries
	}

	freq := series.DetectFrequency()
	ppy := freq.PeriodsPerYear()

	bundle := &contracts.MetricsBundle{
		SchemeCode: fund.SchemeCode,
		Name:       fund.Name,
		Category:   fund.Category,
		AsOf:       series.Latest().Date,
		Points:     series.Len(),
		SpanDays:   series.SpanDays(),
		Frequency:  freq.String(),
	}

	// Period returns
	bundle.Return1Y = PeriodReturn(series, 1)
	bundle.Return3Y = PeriodReturn(series, 3)
	bundle.Return5Y = PeriodReturn(series, 5)
	bundle.Return10Y = PeriodReturn(series, 10)

	// Risk
	returns := simpleReturns(series.Points())
	bundle.Volatility = Volatility(returns, ppy)
	bundle.Sharpe = SharpeRatio(returns, ppy, e.cfg.RiskFreeRate)
	bundle.MaxDrawdown = MaxDrawdown(series)
	bundle.RiskScore = RiskScore(bundle.Volatility, bundle.MaxDrawdown, e.cfg.VolWeight, e.cfg.MDDWeight)

	// Consistency over rolling windows
	window := e.cfg.RollingWindow
	if window <= 0 {
		window = int(ppy)
	}
	rolling := RollingReturns(series, window, ppy)
	bundle.CV = CoefficientOfVariation(rolling)
	bundle.Consistency = ConsistencyScore(bundle.CV)

	// Benchmark-relative
	if e.benchmarks != nil {
		if bench, name, ok := e.benchmarks.Resolve(ctx, fund); ok {
			bundle.Alpha, bundle.TrackingError = Relative(series, bench, ppy)
			bundle.Benchmark = name
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"scheme_code": fund.SchemeCode,
		"points":      bundle.Points,
		"frequency":   bundle.Frequency,
		"missing":     len(bundle.Missing(contracts.MetricKeys)),
	}).Debug("Computed fund metrics")

	return bundle, nil
}
