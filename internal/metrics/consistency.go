package metrics

import (
	"math"

	"github.com/wonny/fundranker/internal/contracts"
)

// RollingReturns computes annualized percentage returns over
// consecutive rolling windows of `window` samples.
func RollingReturns(series *contracts.PriceSeries, window int, periodsPerYear float64) []float64 {
	points := series.Points()
	if window < 1 || len(points) <= window {
		return nil
	}

	out := make([]float64, 0, len(points)-window)
	for i := window; i < len(points); i++ {
		total := points[i].NAV/points[i-window].NAV - 1
		annualized := (math.Pow(1+total, periodsPerYear/float64(window)) - 1) * 100
		out = append(out, annualized)
	}
	return out
}

// CoefficientOfVariation returns stddev/|mean| of the values. Returns
// nil with fewer than 2 values or a zero mean.
func CoefficientOfVariation(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}

	m := mean(values)
	if m == 0 {
		return nil
	}

	cv := stdDev(values) / math.Abs(m)
	return contracts.Float64Ptr(cv)
}

// ConsistencyScore maps a coefficient of variation to a 0..100 score.
// Lower variation scores higher; the score floors at 0.
func ConsistencyScore(cv *float64) *float64 {
	if cv == nil {
		return nil
	}

	score := 100 - *cv*30
	if score < 0 {
		score = 0
	}
	return contracts.Float64Ptr(score)
}
