package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/wonny/fundranker/internal/contracts"
)

// weightSumEpsilon absorbs floating point error when checking that
// strategy weights do not exceed 1.
const weightSumEpsilon = 0.001

// Built-in strategy names.
const (
	StrategyReturnsBased  = "returns-based"
	StrategyComprehensive = "comprehensive"
)

// ConfigError reports an invalid strategy definition.
type ConfigError struct {
	Strategy string
	Field    string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("strategy %q: %s: %s", e.Strategy, e.Field, e.Message)
}

// Strategy is a named weight vector over metric keys.
type Strategy struct {
	Name    string
	Weights map[string]float64

	// MissingPenalty is the normalized contribution charged for a
	// missing metric. 0 equals the cohort minimum after min-max.
	MissingPenalty float64
}

// Validate checks the weight keys, signs and sum.
func (s *Strategy) Validate() error {
	if s.Name == "" {
		return &ConfigError{Strategy: s.Name, Field: "name", Message: "must not be empty"}
	}
	if len(s.Weights) == 0 {
		return &ConfigError{Strategy: s.Name, Field: "weights", Message: "must not be empty"}
	}

	sum := 0.0
	for key, w := range s.Weights {
		if !contracts.IsMetricKey(key) {
			return &ConfigError{Strategy: s.Name, Field: "weights." + key, Message: "unknown metric"}
		}
		if w < 0 {
			return &ConfigError{
				Strategy: s.Name,
				Field:    "weights." + key,
				Message:  fmt.Sprintf("must not be negative, got %.4f", w),
			}
		}
		sum += w
	}

	if sum > 1+weightSumEpsilon {
		return &ConfigError{
			Strategy: s.Name,
			Field:    "weights",
			Message:  fmt.Sprintf("sum %.4f exceeds 1", sum),
		}
	}

	if s.MissingPenalty < 0 || s.MissingPenalty > 1 {
		return &ConfigError{
			Strategy: s.Name,
			Field:    "missing_penalty",
			Message:  fmt.Sprintf("must be within [0, 1], got %.4f", s.MissingPenalty),
		}
	}

	return nil
}

// Keys returns the strategy's metric keys in stable order.
func (s *Strategy) Keys() []string {
	keys := make([]string, 0, len(s.Weights))
	for k := range s.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WeightSum returns the sum of all weights.
func (s *Strategy) WeightSum() float64 {
	sum := 0.0
	for _, w := range s.Weights {
		sum += w
	}
	return math.Round(sum*10000) / 10000
}

// DefaultStrategies returns the two built-in strategies applied to
// every category.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name: StrategyReturnsBased,
			Weights: map[string]float64{
				contracts.MetricReturn1Y:  0.25,
				contracts.MetricReturn3Y:  0.35,
				contracts.MetricReturn5Y:  0.25,
				contracts.MetricReturn10Y: 0.15,
			},
		},
		{
			Name: StrategyComprehensive,
			Weights: map[string]float64{
				contracts.MetricReturn1Y:    0.15,
				contracts.MetricReturn3Y:    0.20,
				contracts.MetricReturn5Y:    0.15,
				contracts.MetricSharpe:      0.15,
				contracts.MetricVolatility:  0.10,
				contracts.MetricMaxDrawdown: 0.05,
				contracts.MetricConsistency: 0.10,
				contracts.MetricAlpha:       0.10,
			},
		},
	}
}
