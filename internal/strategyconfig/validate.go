package strategyconfig

import (
	"fmt"

	"github.com/wonny/fundranker/internal/contracts"
)

// weightSumEpsilon absorbs floating point error in weight sums.
const weightSumEpsilon = 0.001

// ValidationError is a fatal configuration defect.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning flags a configuration that loads but deserves attention.
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints. A failure means the
// configuration must not be used.
func Validate(cfg *Config) error {
	if cfg.Meta.ConfigID == "" {
		return ValidationError{"meta.config_id", "required"}
	}

	if cfg.Ranking.TopN < 1 {
		return ValidationError{"ranking.top_n", "must be >= 1"}
	}

	if len(cfg.Universe.Categories) == 0 {
		return ValidationError{"universe.categories", "required"}
	}
	seenCategory := make(map[string]bool)
	for i, rule := range cfg.Universe.Categories {
		field := fmt.Sprintf("universe.categories[%d]", i)
		if rule.Category == "" {
			return ValidationError{field + ".category", "required"}
		}
		if seenCategory[rule.Category] {
			return ValidationError{field + ".category", fmt.Sprintf("duplicate category %q", rule.Category)}
		}
		seenCategory[rule.Category] = true
		if len(rule.Keywords) == 0 {
			return ValidationError{field + ".keywords", "required"}
		}
		for j, kw := range rule.Keywords {
			if kw == "" {
				return ValidationError{fmt.Sprintf("%s.keywords[%d]", field, j), "must not be empty"}
			}
		}
	}

	if len(cfg.Strategies) == 0 {
		return ValidationError{"strategies", "required"}
	}
	seenStrategy := make(map[string]bool)
	for i, s := range cfg.Strategies {
		field := fmt.Sprintf("strategies[%d]", i)
		if s.Name == "" {
			return ValidationError{field + ".name", "required"}
		}
		if seenStrategy[s.Name] {
			return ValidationError{field + ".name", fmt.Sprintf("duplicate strategy %q", s.Name)}
		}
		seenStrategy[s.Name] = true

		if len(s.Weights) == 0 {
			return ValidationError{field + ".weights", "required"}
		}
		sum := 0.0
		for key, w := range s.Weights {
			if !contracts.IsMetricKey(key) {
				return ValidationError{field + ".weights." + key, "unknown metric"}
			}
			if w < 0 {
				return ValidationError{field + ".weights." + key, fmt.Sprintf("must not be negative, got %.4f", w)}
			}
			sum += w
		}
		if sum > 1+weightSumEpsilon {
			return ValidationError{field + ".weights", fmt.Sprintf("sum %.4f exceeds 1", sum)}
		}
		if s.MissingPenalty < 0 || s.MissingPenalty > 1 {
			return ValidationError{field + ".missing_penalty", fmt.Sprintf("must be in [0, 1], got %.4f", s.MissingPenalty)}
		}
	}

	for i, rule := range cfg.Benchmarks.Rules {
		field := fmt.Sprintf("benchmarks.rules[%d]", i)
		if rule.Match == "" {
			return ValidationError{field + ".match", "required"}
		}
		if rule.Scheme == "" || rule.Name == "" {
			return ValidationError{field, "scheme and name required"}
		}
	}
	for category, ref := range cfg.Benchmarks.Defaults {
		field := "benchmarks.defaults." + category
		if !seenCategory[category] {
			return ValidationError{field, "not a declared category"}
		}
		if ref.Scheme == "" || ref.Name == "" {
			return ValidationError{field, "scheme and name required"}
		}
	}

	return nil
}

// Warn checks recommended constraints. Violations are reported but do
// not block the run.
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// A weight budget left unused flattens the score spread
	for _, s := range cfg.Strategies {
		sum := 0.0
		for _, w := range s.Weights {
			sum += w
		}
		if sum < 1-weightSumEpsilon {
			warnings = append(warnings, Warning{
				Code:    "UNDERWEIGHTED_STRATEGY",
				Message: fmt.Sprintf("strategy %q weights sum to %.4f, not 1", s.Name, sum),
			})
		}
	}

	// Categories without a benchmark default score alpha as missing
	for _, rule := range cfg.Universe.Categories {
		if _, ok := cfg.Benchmarks.Defaults[rule.Category]; !ok {
			warnings = append(warnings, Warning{
				Code:    "NO_BENCHMARK_DEFAULT",
				Message: fmt.Sprintf("category %q has no benchmark default", rule.Category),
			})
		}
	}

	// A keyword repeated across rules only ever matches its first rule
	seenKeyword := make(map[string]string)
	for _, rule := range cfg.Universe.Categories {
		for _, kw := range rule.Keywords {
			if first, ok := seenKeyword[kw]; ok {
				warnings = append(warnings, Warning{
					Code:    "SHADOWED_KEYWORD",
					Message: fmt.Sprintf("keyword %q in category %q is shadowed by category %q", kw, rule.Category, first),
				})
				continue
			}
			seenKeyword[kw] = rule.Category
		}
	}

	return warnings
}
