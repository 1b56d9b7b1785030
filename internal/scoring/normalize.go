package scoring

import (
	"github.com/wonny/fundranker/internal/contracts"
)

// NormalizeCohort min-max normalizes each metric key across the
// cohort's bundles to [0, 1]. Metrics where lower is better are
// inverted after normalization so that 1 is always best. A degenerate
// key (all present values equal) normalizes to 0.5. Funds missing a
// metric get no entry for that key.
func NormalizeCohort(bundles []*contracts.MetricsBundle, keys []string) map[string]map[string]float64 {
	normalized := make(map[string]map[string]float64, len(bundles))
	for _, b := range bundles {
		normalized[b.SchemeCode] = make(map[string]float64, len(keys))
	}

	for _, key := range keys {
		lo, hi, any := cohortRange(bundles, key)
		if !any {
			continue
		}

		for _, b := range bundles {
			v, ok := b.Metric(key)
			if !ok {
				continue
			}

			var norm float64
			if hi == lo {
				norm = 0.5
			} else {
				norm = (v - lo) / (hi - lo)
			}

			if contracts.LowerIsBetter(key) {
				norm = 1 - norm
			}

			normalized[b.SchemeCode][key] = norm
		}
	}

	return normalized
}

// cohortRange finds the min and max of a metric across bundles. any is
// false when no bundle has the metric.
func cohortRange(bundles []*contracts.MetricsBundle, key string) (lo, hi float64, any bool) {
	for _, b := range bundles {
		v, ok := b.Metric(key)
		if !ok {
			continue
		}
		if !any {
			lo, hi, any = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, any
}
