package contracts

import "time"

// Metric keys used by scoring strategies.
const (
	MetricReturn1Y      = "return_1y"
	MetricReturn3Y      = "return_3y"
	MetricReturn5Y      = "return_5y"
	MetricReturn10Y     = "return_10y"
	MetricVolatility    = "volatility"
	MetricSharpe        = "sharpe"
	MetricMaxDrawdown   = "max_drawdown"
	MetricRiskScore     = "risk_score"
	MetricConsistency   = "consistency"
	MetricCV            = "cv"
	MetricAlpha         = "alpha"
	MetricTrackingError = "tracking_error"
)

// MetricKeys lists every metric a strategy may weight.
var MetricKeys = []string{
	MetricReturn1Y,
	MetricReturn3Y,
	MetricReturn5Y,
	MetricReturn10Y,
	MetricVolatility,
	MetricSharpe,
	MetricMaxDrawdown,
	MetricRiskScore,
	MetricConsistency,
	MetricCV,
	MetricAlpha,
	MetricTrackingError,
}

// IsMetricKey reports whether key names a known metric.
func IsMetricKey(key string) bool {
	for _, k := range MetricKeys {
		if k == key {
			return true
		}
	}
	return false
}

// LowerIsBetter reports whether a metric improves as it decreases.
// These metrics are inverted after cohort normalization.
func LowerIsBetter(key string) bool {
	switch key {
	case MetricVolatility, MetricRiskScore, MetricTrackingError, MetricCV:
		return true
	}
	return false
}

// MetricsBundle holds every computed metric for one fund. A nil field
// means the input history was insufficient for that metric, never zero.
type MetricsBundle struct {
	SchemeCode string    `json:"scheme_code"`
	Name       string    `json:"name,omitempty"`
	Category   string    `json:"category,omitempty"`
	AsOf       time.Time `json:"as_of"`
	Points     int       `json:"points"`
	SpanDays   int       `json:"span_days"`
	Frequency  string    `json:"frequency"`

	// Period returns, percent
	Return1Y  *float64 `json:"return_1y,omitempty"`
	Return3Y  *float64 `json:"return_3y,omitempty"`
	Return5Y  *float64 `json:"return_5y,omitempty"`
	Return10Y *float64 `json:"return_10y,omitempty"`

	// Risk
	Volatility  *float64 `json:"volatility,omitempty"`
	Sharpe      *float64 `json:"sharpe,omitempty"`
	MaxDrawdown float64  `json:"max_drawdown"`
	RiskScore   *float64 `json:"risk_score,omitempty"`

	// Consistency
	Consistency *float64 `json:"consistency,omitempty"`
	CV          *float64 `json:"cv,omitempty"`

	// Benchmark-relative
	Alpha         *float64 `json:"alpha,omitempty"`
	TrackingError *float64 `json:"tracking_error,omitempty"`
	Benchmark     string   `json:"benchmark,omitempty"`
}

// Metric returns the value for a metric key and whether it is present.
func (m *MetricsBundle) Metric(key string) (float64, bool) {
	switch key {
	case MetricReturn1Y:
		return deref(m.Return1Y)
	case MetricReturn3Y:
		return deref(m.Return3Y)
	case MetricReturn5Y:
		return deref(m.Return5Y)
	case MetricReturn10Y:
		return deref(m.Return10Y)
	case MetricVolatility:
		return deref(m.Volatility)
	case MetricSharpe:
		return deref(m.Sharpe)
	case MetricMaxDrawdown:
		return m.MaxDrawdown, true
	case MetricRiskScore:
		return deref(m.RiskScore)
	case MetricConsistency:
		return deref(m.Consistency)
	case MetricCV:
		return deref(m.CV)
	case MetricAlpha:
		return deref(m.Alpha)
	case MetricTrackingError:
		return deref(m.TrackingError)
	}
	return 0, false
}

// Missing returns the subset of keys without a value in the bundle.
func (m *MetricsBundle) Missing(keys []string) []string {
	var missing []string
	for _, k := range keys {
		if _, ok := m.Metric(k); !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
