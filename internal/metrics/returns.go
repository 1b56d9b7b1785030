package metrics

import (
	"math"

	"github.com/wonny/fundranker/internal/contracts"
)

// PeriodReturn computes the anchored percentage return over the given
// number of years: (latest/anchor - 1) * 100 where the anchor is the
// last point dated at or before latest minus the period. Returns nil
// when the series does not reach back that far.
func PeriodReturn(series *contracts.PriceSeries, years int) *float64 {
	latest := series.Latest()
	target := latest.Date.AddDate(-years, 0, 0)

	anchor, ok := series.AnchorAtOrBefore(target)
	if !ok {
		return nil
	}

	ret := (latest.NAV/anchor.NAV - 1) * 100
	return contracts.Float64Ptr(ret)
}

// simpleReturns computes period-over-period fractional returns.
func simpleReturns(points []contracts.PricePoint) []float64 {
	if len(points) < 2 {
		return nil
	}

	out := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		out = append(out, points[i].NAV/points[i-1].NAV-1)
	}
	return out
}

// mean returns the arithmetic mean of values.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev returns the sample standard deviation of values.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}

	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
