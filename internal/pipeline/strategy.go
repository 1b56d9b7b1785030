package pipeline

import (
	"context"
	"strings"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/internal/fetch"
	"github.com/wonny/fundranker/internal/metrics"
	"github.com/wonny/fundranker/internal/scoring"
	"github.com/wonny/fundranker/internal/strategyconfig"
	"github.com/wonny/fundranker/internal/universe"
)

// UniverseConfig maps the strategy file's universe section onto the
// classifier configuration.
func UniverseConfig(cfg *strategyconfig.Config) universe.Config {
	rules := make([]universe.Rule, len(cfg.Universe.Categories))
	for i, rule := range cfg.Universe.Categories {
		rules[i] = universe.Rule{Category: rule.Category, Keywords: rule.Keywords}
	}
	return universe.Config{Rules: rules, DirectOnly: cfg.Universe.DirectOnly}
}

// Strategies maps the strategy file's scoring strategies onto the
// scorer's strategy type.
func Strategies(cfg *strategyconfig.Config) []scoring.Strategy {
	out := make([]scoring.Strategy, len(cfg.Strategies))
	for i, s := range cfg.Strategies {
		weights := make(map[string]float64, len(s.Weights))
		for key, w := range s.Weights {
			weights[key] = w
		}
		out[i] = scoring.Strategy{
			Name:           s.Name,
			Weights:        weights,
			MissingPenalty: s.MissingPenalty,
		}
	}
	return out
}

// BenchmarkRules maps the strategy file's benchmark section onto the
// resolver's keyword rules and category defaults. Match keywords are
// lowercased here; the resolver compares lowercase.
func BenchmarkRules(cfg *strategyconfig.Config) ([]metrics.BenchmarkRule, map[string]metrics.BenchmarkRule) {
	rules := make([]metrics.BenchmarkRule, len(cfg.Benchmarks.Rules))
	for i, rule := range cfg.Benchmarks.Rules {
		rules[i] = metrics.BenchmarkRule{
			Match:  strings.ToLower(rule.Match),
			Scheme: rule.Scheme,
			Name:   rule.Name,
		}
	}

	defaults := make(map[string]metrics.BenchmarkRule, len(cfg.Benchmarks.Defaults))
	for category, ref := range cfg.Benchmarks.Defaults {
		defaults[category] = metrics.BenchmarkRule{Scheme: ref.Scheme, Name: ref.Name}
	}

	return rules, defaults
}

// CacheProvider adapts the fetch service to the benchmark series
// interface, so benchmark NAV histories flow through the same cache
// as fund histories.
type CacheProvider struct {
	service *fetch.Service
}

// NewCacheProvider wraps a fetch service.
func NewCacheProvider(service *fetch.Service) *CacheProvider {
	return &CacheProvider{service: service}
}

// Series returns the NAV series for a scheme, fetching on cache miss.
func (p *CacheProvider) Series(ctx context.Context, schemeCode string) (*contracts.PriceSeries, error) {
	entry, err := p.service.Series(ctx, schemeCode)
	if err != nil {
		return nil, err
	}
	return entry.Series, nil
}
