package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundranker/internal/contracts"
)

func TestVolatility(t *testing.T) {
	// Alternating +1%/-1% monthly returns: sample std is
	// 0.02/sqrt(3), annualized by sqrt(12) gives exactly 4%.
	returns := []float64{0.01, -0.01, 0.01, -0.01}

	vol := Volatility(returns, 12)
	require.NotNil(t, vol)
	assert.InDelta(t, 4.0, *vol, 1e-9)
}

func TestVolatility_InsufficientReturns(t *testing.T) {
	assert.Nil(t, Volatility(nil, 12))
	assert.Nil(t, Volatility([]float64{0.01}, 12))
}

func TestVolatility_ConstantReturns(t *testing.T) {
	// Identical returns have zero deviation, which is a value, not a
	// missing metric.
	vol := Volatility([]float64{0.01, 0.01, 0.01}, 12)
	require.NotNil(t, vol)
	assert.Equal(t, 0.0, *vol)
}

func TestSharpeRatio(t *testing.T) {
	returns := []float64{0.02, 0.01, 0.03, 0.02}

	// mean 0.02, rf per period 6/12/100 = 0.005
	ratio := SharpeRatio(returns, 12, 6.0)
	require.NotNil(t, ratio)
	assert.Greater(t, *ratio, 0.0)

	// Zero risk-free rate ratio must be strictly larger
	ratioNoRF := SharpeRatio(returns, 12, 0)
	require.NotNil(t, ratioNoRF)
	assert.Greater(t, *ratioNoRF, *ratio)
}

func TestSharpeRatio_ZeroVolatility(t *testing.T) {
	assert.Nil(t, SharpeRatio([]float64{0.01, 0.01, 0.01}, 12, 6.0),
		"division by zero volatility must yield nil")
}

func TestSharpeRatio_InsufficientReturns(t *testing.T) {
	assert.Nil(t, SharpeRatio([]float64{0.01}, 12, 6.0))
}

func TestMaxDrawdown(t *testing.T) {
	series := monthlySeries(t, "2024-01-01", []float64{100, 110, 99, 105, 120})

	// Peak 110, trough 99: -10%
	assert.InDelta(t, -10.0, MaxDrawdown(series), 1e-9)
}

func TestMaxDrawdown_DeeperSecondDip(t *testing.T) {
	series := monthlySeries(t, "2024-01-01", []float64{100, 90, 120, 60})

	// Second dip from peak 120 to 60 is -50%, deeper than the first
	assert.InDelta(t, -50.0, MaxDrawdown(series), 1e-9)
}

func TestMaxDrawdown_MonotonicNonDecreasing(t *testing.T) {
	series := monthlySeries(t, "2024-01-01", []float64{100, 100, 105, 105, 110})

	assert.Equal(t, 0.0, MaxDrawdown(series),
		"a series that never declines has exactly zero drawdown")
}

func TestMaxDrawdown_SinglePoint(t *testing.T) {
	series := monthlySeries(t, "2024-01-01", []float64{100})
	assert.Equal(t, 0.0, MaxDrawdown(series))
}

func TestMaxDrawdown_Bounds(t *testing.T) {
	series := monthlySeries(t, "2024-01-01", []float64{1000, 0.1})

	dd := MaxDrawdown(series)
	assert.Less(t, dd, -99.0)
	assert.GreaterOrEqual(t, dd, -100.0)
}

func TestRiskScore(t *testing.T) {
	score := RiskScore(contracts.Float64Ptr(15.0), -8.0, 2.0, 0.5)
	require.NotNil(t, score)
	assert.InDelta(t, 15.0*2.0+8.0*0.5, *score, 1e-9)
}

func TestRiskScore_ClampedAt100(t *testing.T) {
	score := RiskScore(contracts.Float64Ptr(80.0), -60.0, 2.0, 0.5)
	require.NotNil(t, score)
	assert.Equal(t, 100.0, *score)
}

func TestRiskScore_NilVolatility(t *testing.T) {
	assert.Nil(t, RiskScore(nil, -8.0, 2.0, 0.5))
}
