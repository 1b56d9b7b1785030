package universe

import (
	"regexp"
	"strings"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/pkg/logger"
)

// Payout and legacy plan variants never enter a cohort: their NAV
// histories are distorted by distributions.
var payoutPattern = regexp.MustCompile(`(?i)(idcw|bonus|periodic|dividend)`)

// Rule maps scheme-name keywords to a category label. Rules are
// checked in order and the first match wins.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Config holds cohort construction criteria.
type Config struct {
	Rules      []Rule `yaml:"rules"`
	DirectOnly bool   `yaml:"direct_only"`
}

// DefaultConfig returns the built-in classification rules.
func DefaultConfig() Config {
	return Config{
		DirectOnly: true,
		Rules: []Rule{
			{Category: "smallcap", Keywords: []string{"small cap", "smallcap", "small-cap"}},
			{Category: "midcap", Keywords: []string{"mid cap", "midcap", "mid-cap"}},
			{Category: "largecap", Keywords: []string{"large cap", "largecap", "large-cap"}},
			{Category: "index", Keywords: []string{"index", "nifty", "sensex", "etf", "bse"}},
			{Category: "elss", Keywords: []string{"elss", "tax saving", "tax saver"}},
			{Category: "hybrid", Keywords: []string{"hybrid", "balanced", "equity savings", "arbitrage"}},
			{Category: "debt", Keywords: []string{"debt", "liquid", "gilt", "bond", "income", "overnight"}},
			{Category: "sectoral", Keywords: []string{"sector", "banking", "pharma", "technology",
				"infrastructure", "consumption", "energy", "healthcare", "financial"}},
		},
	}
}

// Builder splits a flat fund list into per-category cohorts
type Builder struct {
	config Config
	log    *logger.Logger
}

// NewBuilder creates a new cohort Builder
func NewBuilder(config Config, log *logger.Logger) *Builder {
	return &Builder{
		config: config,
		log:    log,
	}
}

// Classify returns the category label for a scheme name, or "" when
// no rule matches.
func (b *Builder) Classify(name string) string {
	lower := strings.ToLower(name)
	for _, rule := range b.config.Rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return rule.Category
			}
		}
	}
	return ""
}

// Build groups funds into cohorts by classification rule. Funds that
// match a rule but fail the plan filter are recorded in the cohort's
// Excluded map with the reason; funds matching no rule are dropped.
func (b *Builder) Build(funds []contracts.Fund) map[string]*contracts.Cohort {
	cohorts := make(map[string]*contracts.Cohort, len(b.config.Rules))
	for _, rule := range b.config.Rules {
		cohorts[rule.Category] = &contracts.Cohort{
			Category: rule.Category,
			Funds:    make([]contracts.Fund, 0),
			Excluded: make(map[string]string),
		}
	}

	unmatched := 0
	for _, fund := range funds {
		if fund.SchemeCode == "" {
			continue
		}

		category := b.Classify(fund.Name)
		if category == "" {
			unmatched++
			continue
		}

		cohort := cohorts[category]
		if reason := b.checkExclusion(fund); reason != "" {
			cohort.Excluded[fund.SchemeCode] = reason
			continue
		}

		fund.Category = category
		cohort.Funds = append(cohort.Funds, fund)
	}

	for category, cohort := range cohorts {
		b.log.WithFields(map[string]interface{}{
			"category": category,
			"funds":    cohort.Count(),
			"excluded": len(cohort.Excluded),
		}).Debug("Cohort built")
	}
	b.log.WithFields(map[string]interface{}{
		"total":     len(funds),
		"unmatched": unmatched,
	}).Info("Universe classification complete")

	return cohorts
}

// checkExclusion checks if a fund should be excluded and returns the reason
func (b *Builder) checkExclusion(fund contracts.Fund) string {
	name := strings.ToLower(fund.Name)

	// 1. Payout variants
	if payoutPattern.MatchString(name) {
		return "payout variant"
	}

	// 2. Regular (distributor) plans
	if b.config.DirectOnly && !strings.Contains(name, "direct") {
		return "not a direct plan"
	}

	return ""
}
