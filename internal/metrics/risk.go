package metrics

import (
	"math"

	"github.com/wonny/fundranker/internal/contracts"
)

// Volatility returns the annualized standard deviation of simple
// returns in percent, scaled by sqrt of the periods per year. Returns
// nil with fewer than 2 returns.
func Volatility(returns []float64, periodsPerYear float64) *float64 {
	if len(returns) < 2 {
		return nil
	}

	vol := stdDev(returns) * math.Sqrt(periodsPerYear) * 100
	return contracts.Float64Ptr(vol)
}

// SharpeRatio returns the annualized excess return per unit of
// volatility. riskFreeRate is an annual percentage. Returns nil with
// fewer than 2 returns or zero volatility.
func SharpeRatio(returns []float64, periodsPerYear, riskFreeRate float64) *float64 {
	if len(returns) < 2 {
		return nil
	}

	sd := stdDev(returns)
	if sd == 0 {
		return nil
	}

	rfPerPeriod := riskFreeRate / 100 / periodsPerYear
	excess := mean(returns) - rfPerPeriod
	ratio := excess / sd * math.Sqrt(periodsPerYear)
	return contracts.Float64Ptr(ratio)
}

// MaxDrawdown returns the largest peak-to-trough decline in percent.
// The value is in [-100, 0]; a monotonically non-decreasing series
// yields exactly 0. Single forward scan with a running peak.
func MaxDrawdown(series *contracts.PriceSeries) float64 {
	peak := series.First().NAV
	maxDD := 0.0

	for _, p := range series.Points() {
		if p.NAV > peak {
			peak = p.NAV
		}
		dd := (p.NAV - peak) / peak * 100
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// RiskScore combines annualized volatility and drawdown magnitude into
// a 0..100 score. Returns nil when volatility is unavailable.
func RiskScore(volatility *float64, maxDrawdown, volWeight, mddWeight float64) *float64 {
	if volatility == nil {
		return nil
	}

	score := *volatility*volWeight + math.Abs(maxDrawdown)*mddWeight
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return contracts.Float64Ptr(score)
}
