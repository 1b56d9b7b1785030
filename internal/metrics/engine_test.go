package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundranker/internal/contracts"
)

func TestEngine_Compute(t *testing.T) {
	// 11 years of monthly data with mild oscillation around steady
	// growth, enough history for every period return.
	navs := make([]float64, 133)
	navs[0] = 100
	for i := 1; i < len(navs); i++ {
		factor := 1.012
		if i%2 == 0 {
			factor = 0.998
		}
		navs[i] = navs[i-1] * factor
	}
	series := monthlySeries(t, "2013-01-01", navs)

	engine := NewEngine(DefaultConfig(), nil, testLogger())
	fund := contracts.Fund{SchemeCode: "118834", Name: "Axis Small Cap Fund", Category: "smallcap"}

	bundle, err := engine.Compute(context.Background(), fund, series)
	require.NoError(t, err)

	assert.Equal(t, "118834", bundle.SchemeCode)
	assert.Equal(t, "smallcap", bundle.Category)
	assert.Equal(t, 133, bundle.Points)
	assert.Equal(t, "monthly", bundle.Frequency)
	assert.Equal(t, series.Latest().Date, bundle.AsOf)

	require.NotNil(t, bundle.Return1Y)
	require.NotNil(t, bundle.Return3Y)
	require.NotNil(t, bundle.Return5Y)
	require.NotNil(t, bundle.Return10Y)
	assert.Greater(t, *bundle.Return10Y, *bundle.Return1Y,
		"longer growth periods accumulate larger returns")

	require.NotNil(t, bundle.Volatility)
	assert.Greater(t, *bundle.Volatility, 0.0)

	require.NotNil(t, bundle.Sharpe)
	require.NotNil(t, bundle.RiskScore)
	require.NotNil(t, bundle.CV)
	require.NotNil(t, bundle.Consistency)

	// No benchmark resolver wired
	assert.Nil(t, bundle.Alpha)
	assert.Nil(t, bundle.TrackingError)
	assert.Empty(t, bundle.Benchmark)
}

func TestEngine_Compute_SinglePoint(t *testing.T) {
	series := monthlySeries(t, "2024-01-01", []float64{100})

	engine := NewEngine(DefaultConfig(), nil, testLogger())
	bundle, err := engine.Compute(context.Background(), contracts.Fund{SchemeCode: "X"}, series)
	require.NoError(t, err)

	assert.Nil(t, bundle.Return1Y)
	assert.Nil(t, bundle.Return3Y)
	assert.Nil(t, bundle.Volatility)
	assert.Nil(t, bundle.Sharpe)
	assert.Equal(t, 0.0, bundle.MaxDrawdown)
	assert.Nil(t, bundle.RiskScore)
	assert.Nil(t, bundle.Consistency)
	assert.Nil(t, bundle.CV)
}

func TestEngine_Compute_FlatSeries(t *testing.T) {
	// Identical NAVs: volatility is a real zero, the ratio dividing by
	// it is missing.
	navs := make([]float64, 30)
	for i := range navs {
		navs[i] = 100
	}
	series := monthlySeries(t, "2022-01-01", navs)

	engine := NewEngine(DefaultConfig(), nil, testLogger())
	bundle, err := engine.Compute(context.Background(), contracts.Fund{SchemeCode: "X"}, series)
	require.NoError(t, err)

	require.NotNil(t, bundle.Volatility)
	assert.Equal(t, 0.0, *bundle.Volatility)
	assert.Nil(t, bundle.Sharpe)
	assert.Equal(t, 0.0, bundle.MaxDrawdown)

	require.NotNil(t, bundle.Return1Y)
	assert.Equal(t, 0.0, *bundle.Return1Y)

	// Rolling returns are all zero, so their mean is zero and the CV
	// is undefined rather than a sentinel.
	assert.Nil(t, bundle.CV)
	assert.Nil(t, bundle.Consistency)
}

func TestEngine_Compute_WithBenchmark(t *testing.T) {
	navs := make([]float64, 30)
	navs[0] = 100
	for i := 1; i < len(navs); i++ {
		navs[i] = navs[i-1] * 1.01
	}
	series := monthlySeries(t, "2022-01-01", navs)

	benchNavs := make([]float64, 30)
	benchNavs[0] = 100
	for i := 1; i < len(benchNavs); i++ {
		benchNavs[i] = benchNavs[i-1] * 1.005
	}
	bench := monthlySeries(t, "2022-01-01", benchNavs)

	resolver := NewBenchmarkResolver(
		[]BenchmarkRule{{Match: "small", Scheme: "990001", Name: "Nifty Smallcap 100"}},
		nil,
		fakeProvider{"990001": bench},
		testLogger(),
	)

	engine := NewEngine(DefaultConfig(), resolver, testLogger())
	fund := contracts.Fund{SchemeCode: "118834", Name: "Axis Small Cap Fund", Category: "smallcap"}

	bundle, err := engine.Compute(context.Background(), fund, series)
	require.NoError(t, err)

	assert.Equal(t, "Nifty Smallcap 100", bundle.Benchmark)
	require.NotNil(t, bundle.Alpha)
	require.NotNil(t, bundle.TrackingError)
	assert.Greater(t, *bundle.Alpha, 0.0, "fund outgrowing its benchmark has positive alpha")
}

func TestEngine_Compute_EmptySeries(t *testing.T) {
	engine := NewEngine(DefaultConfig(), nil, testLogger())

	_, err := engine.Compute(context.Background(), contracts.Fund{SchemeCode: "X"}, nil)
	assert.ErrorIs(t, err, contracts.ErrEmptySeries)
}
