package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundranker/internal/contracts"
)

func TestStrategy_Validate(t *testing.T) {
	tests := []struct {
		name      string
		strategy  Strategy
		wantField string // empty means valid
	}{
		{
			name: "valid",
			strategy: Strategy{
				Name: "test",
				Weights: map[string]float64{
					contracts.MetricReturn1Y: 0.6,
					contracts.MetricReturn3Y: 0.4,
				},
			},
		},
		{
			name: "valid partial sum",
			strategy: Strategy{
				Name:    "test",
				Weights: map[string]float64{contracts.MetricReturn1Y: 0.5},
			},
		},
		{
			name: "sum above one",
			strategy: Strategy{
				Name: "test",
				Weights: map[string]float64{
					contracts.MetricReturn1Y: 0.7,
					contracts.MetricReturn3Y: 0.5,
				},
			},
			wantField: "weights",
		},
		{
			name: "negative weight",
			strategy: Strategy{
				Name:    "test",
				Weights: map[string]float64{contracts.MetricReturn1Y: -0.1},
			},
			wantField: "weights." + contracts.MetricReturn1Y,
		},
		{
			name: "unknown metric",
			strategy: Strategy{
				Name:    "test",
				Weights: map[string]float64{"momentum": 0.5},
			},
			wantField: "weights.momentum",
		},
		{
			name: "empty weights",
			strategy: Strategy{
				Name:    "test",
				Weights: nil,
			},
			wantField: "weights",
		},
		{
			name: "empty name",
			strategy: Strategy{
				Weights: map[string]float64{contracts.MetricReturn1Y: 0.5},
			},
			wantField: "name",
		},
		{
			name: "penalty out of range",
			strategy: Strategy{
				Name:           "test",
				Weights:        map[string]float64{contracts.MetricReturn1Y: 0.5},
				MissingPenalty: 1.5,
			},
			wantField: "missing_penalty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.strategy.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestStrategy_ValidateSumWithinEpsilon(t *testing.T) {
	// Three thirds overshoot 1.0 by a floating point hair
	strategy := Strategy{
		Name: "thirds",
		Weights: map[string]float64{
			contracts.MetricReturn1Y: 1.0 / 3,
			contracts.MetricReturn3Y: 1.0 / 3,
			contracts.MetricReturn5Y: 1.0/3 + 1e-9,
		},
	}

	assert.NoError(t, strategy.Validate())
}

func TestStrategy_Keys(t *testing.T) {
	strategy := Strategy{
		Name: "test",
		Weights: map[string]float64{
			contracts.MetricVolatility: 0.5,
			contracts.MetricReturn1Y:   0.5,
		},
	}

	keys := strategy.Keys()
	assert.Equal(t, []string{contracts.MetricReturn1Y, contracts.MetricVolatility}, keys,
		"keys must come back in stable sorted order")
}

func TestDefaultStrategies(t *testing.T) {
	strategies := DefaultStrategies()
	require.Len(t, strategies, 2)

	names := []string{strategies[0].Name, strategies[1].Name}
	assert.Contains(t, names, StrategyReturnsBased)
	assert.Contains(t, names, StrategyComprehensive)

	for _, s := range strategies {
		assert.NoError(t, s.Validate(), "built-in strategy %s must validate", s.Name)
		assert.InDelta(t, 1.0, s.WeightSum(), weightSumEpsilon)
	}

	// The returns strategy weights period returns only
	for _, s := range strategies {
		if s.Name != StrategyReturnsBased {
			continue
		}
		for key := range s.Weights {
			assert.Contains(t, []string{
				contracts.MetricReturn1Y,
				contracts.MetricReturn3Y,
				contracts.MetricReturn5Y,
				contracts.MetricReturn10Y,
			}, key)
		}
	}
}
