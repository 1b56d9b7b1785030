package scoring

import (
	"fmt"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/pkg/logger"
)

// Scorer applies weighted strategies to cohort metric bundles.
type Scorer struct {
	strategies map[string]Strategy
	order      []string
	logger     *logger.Logger
}

// NewScorer validates the strategies and creates a scorer.
func NewScorer(strategies []Strategy, log *logger.Logger) (*Scorer, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("at least one strategy is required")
	}

	byName := make(map[string]Strategy, len(strategies))
	order := make([]string, 0, len(strategies))
	for _, s := range strategies {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byName[s.Name]; dup {
			return nil, &ConfigError{Strategy: s.Name, Field: "name", Message: "duplicate strategy"}
		}
		byName[s.Name] = s
		order = append(order, s.Name)
	}

	return &Scorer{
		strategies: byName,
		order:      order,
		logger:     log,
	}, nil
}

// StrategyNames returns the configured strategy names in order.
func (s *Scorer) StrategyNames() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Strategy returns a strategy by name.
func (s *Scorer) Strategy(name string) (Strategy, bool) {
	strat, ok := s.strategies[name]
	return strat, ok
}

// ScoreCohort normalizes the cohort and computes each fund's weighted
// total under the named strategy. Funds missing every strategy metric
// are unscorable and returned separately.
func (s *Scorer) ScoreCohort(category, strategyName string, bundles []*contracts.MetricsBundle) ([]contracts.CohortScore, []string, error) {
	strat, ok := s.strategies[strategyName]
	if !ok {
		return nil, nil, fmt.Errorf("unknown strategy %q", strategyName)
	}

	keys := strat.Keys()
	normalized := NormalizeCohort(bundles, keys)

	scores := make([]contracts.CohortScore, 0, len(bundles))
	var unscorable []string

	for _, b := range bundles {
		missing := b.Missing(keys)
		if len(missing) == len(keys) {
			unscorable = append(unscorable, b.SchemeCode)
			continue
		}

		components := make(map[string]float64, len(keys))
		total := 0.0
		for _, key := range keys {
			contribution, ok := normalized[b.SchemeCode][key]
			if !ok {
				contribution = strat.MissingPenalty
			}
			components[key] = contribution
			total += strat.Weights[key] * contribution
		}

		scores = append(scores, contracts.CohortScore{
			SchemeCode: b.SchemeCode,
			Name:       b.Name,
			TotalScore: total,
			Components: components,
			Missing:    missing,
			SpanDays:   b.SpanDays,
		})
	}

	s.logger.WithFields(map[string]interface{}{
		"category":   category,
		"strategy":   strategyName,
		"scored":     len(scores),
		"unscorable": len(unscorable),
	}).Debug("Scored cohort")

	return scores, unscorable, nil
}
