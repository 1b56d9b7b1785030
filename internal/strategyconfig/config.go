// Package strategyconfig defines the tunable ranking configuration:
// category keyword rules, scoring strategy weights and benchmark
// mappings, loaded from a single YAML file.
package strategyconfig

import "time"

// Config is the full ranking configuration.
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Ranking    Ranking    `yaml:"ranking" json:"ranking"`
	Universe   Universe   `yaml:"universe" json:"universe"`
	Strategies []Strategy `yaml:"strategies" json:"strategies"`
	Benchmarks Benchmarks `yaml:"benchmarks" json:"benchmarks"`
}

// Meta identifies a configuration revision.
type Meta struct {
	ConfigID string `yaml:"config_id" json:"config_id"`
	Version  string `yaml:"version" json:"version"`
}

// Ranking holds output settings.
type Ranking struct {
	TopN int `yaml:"top_n" json:"top_n"`
}

// Universe controls which funds enter the cohorts.
type Universe struct {
	DirectOnly bool           `yaml:"direct_only" json:"direct_only"`
	Categories []CategoryRule `yaml:"categories" json:"categories"`
}

// CategoryRule assigns funds whose name contains a keyword to a
// category. Rules are ordered; the first match wins.
type CategoryRule struct {
	Category string   `yaml:"category" json:"category"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Strategy is a named weight vector over metric keys.
type Strategy struct {
	Name           string             `yaml:"name" json:"name"`
	MissingPenalty float64            `yaml:"missing_penalty" json:"missing_penalty"`
	Weights        map[string]float64 `yaml:"weights" json:"weights"`
}

// Benchmarks maps funds to the index series they are measured against.
// Keyword rules are checked first, then the category default.
type Benchmarks struct {
	Rules    []BenchmarkRule         `yaml:"rules" json:"rules"`
	Defaults map[string]BenchmarkRef `yaml:"defaults" json:"defaults"`
}

// BenchmarkRule matches a fund name keyword to a benchmark proxy.
type BenchmarkRule struct {
	Match  string `yaml:"match" json:"match"`
	Scheme string `yaml:"scheme" json:"scheme"`
	Name   string `yaml:"name" json:"name"`
}

// BenchmarkRef names an index and the scheme whose NAV series proxies it.
type BenchmarkRef struct {
	Scheme string `yaml:"scheme" json:"scheme"`
	Name   string `yaml:"name" json:"name"`
}

// Snapshot captures the exact configuration a run used, for the run
// history record.
type Snapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	ConfigID   string    `json:"config_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Default returns the built-in configuration used when no YAML file
// is supplied.
func Default() *Config {
	return &Config{
		Meta: Meta{
			ConfigID: "fund-ranking-default",
			Version:  "1",
		},
		Ranking: Ranking{TopN: 5},
		Universe: Universe{
			DirectOnly: true,
			Categories: []CategoryRule{
				{Category: "smallcap", Keywords: []string{"small cap", "smallcap", "small-cap"}},
				{Category: "midcap", Keywords: []string{"mid cap", "midcap", "mid-cap"}},
				{Category: "largecap", Keywords: []string{"large cap", "largecap", "large-cap", "bluechip", "blue chip"}},
				{Category: "index", Keywords: []string{"index", "nifty", "sensex", "etf", "bse"}},
				{Category: "elss", Keywords: []string{"elss", "tax saving", "tax saver"}},
				{Category: "hybrid", Keywords: []string{"hybrid", "balanced", "equity savings", "arbitrage"}},
				{Category: "debt", Keywords: []string{"debt", "liquid", "gilt", "bond", "income", "overnight"}},
				{Category: "sectoral", Keywords: []string{"sector", "banking", "pharma", "technology", "infrastructure", "consumption", "energy", "healthcare", "financial"}},
			},
		},
		Strategies: []Strategy{
			{
				Name: "returns-based",
				Weights: map[string]float64{
					"return_1y":  0.25,
					"return_3y":  0.35,
					"return_5y":  0.25,
					"return_10y": 0.15,
				},
			},
			{
				Name: "comprehensive",
				Weights: map[string]float64{
					"return_1y":    0.15,
					"return_3y":    0.20,
					"return_5y":    0.15,
					"sharpe":       0.15,
					"volatility":   0.10,
					"max_drawdown": 0.05,
					"consistency":  0.10,
					"alpha":        0.10,
				},
			},
		},
		Benchmarks: Benchmarks{
			Rules: []BenchmarkRule{
				{Match: "nifty 50", Scheme: "120716", Name: "NIFTY 50"},
				{Match: "sensex", Scheme: "119065", Name: "S&P BSE SENSEX"},
				{Match: "nifty next 50", Scheme: "128312", Name: "NIFTY Next 50"},
				{Match: "nifty midcap", Scheme: "146222", Name: "NIFTY Midcap 150"},
				{Match: "nifty smallcap", Scheme: "147623", Name: "NIFTY Smallcap 250"},
				{Match: "nifty", Scheme: "120716", Name: "NIFTY 50"},
			},
			Defaults: map[string]BenchmarkRef{
				"largecap": {Scheme: "120716", Name: "NIFTY 50"},
				"midcap":   {Scheme: "146222", Name: "NIFTY Midcap 150"},
				"smallcap": {Scheme: "147623", Name: "NIFTY Smallcap 250"},
				"index":    {Scheme: "120716", Name: "NIFTY 50"},
				"elss":     {Scheme: "125354", Name: "NIFTY 500"},
				"sectoral": {Scheme: "125354", Name: "NIFTY 500"},
			},
		},
	}
}
