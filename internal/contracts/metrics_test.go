package contracts

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMetricsBundle_Metric(t *testing.T) {
	bundle := &MetricsBundle{
		SchemeCode:  "118834",
		Return1Y:    Float64Ptr(12.5),
		Volatility:  Float64Ptr(15.2),
		MaxDrawdown: -8.3,
	}

	tests := []struct {
		key      string
		wantVal  float64
		wantOK   bool
	}{
		{MetricReturn1Y, 12.5, true},
		{MetricVolatility, 15.2, true},
		{MetricMaxDrawdown, -8.3, true},
		{MetricReturn3Y, 0, false},
		{MetricSharpe, 0, false},
		{"bogus", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			val, ok := bundle.Metric(tt.key)
			if ok != tt.wantOK {
				t.Fatalf("Metric(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
			if ok && val != tt.wantVal {
				t.Errorf("Metric(%q) = %v, want %v", tt.key, val, tt.wantVal)
			}
		})
	}
}

func TestMetricsBundle_Missing(t *testing.T) {
	bundle := &MetricsBundle{
		SchemeCode: "118834",
		Return1Y:   Float64Ptr(12.5),
	}

	keys := []string{MetricReturn1Y, MetricReturn3Y, MetricVolatility}
	missing := bundle.Missing(keys)

	if len(missing) != 2 {
		t.Fatalf("Missing() returned %d keys, want 2", len(missing))
	}
	if missing[0] != MetricReturn3Y || missing[1] != MetricVolatility {
		t.Errorf("Missing() = %v, want [return_3y volatility]", missing)
	}
}

func TestLowerIsBetter(t *testing.T) {
	lower := []string{MetricVolatility, MetricRiskScore, MetricTrackingError, MetricCV}
	for _, key := range lower {
		if !LowerIsBetter(key) {
			t.Errorf("LowerIsBetter(%q) = false, want true", key)
		}
	}

	higher := []string{MetricReturn1Y, MetricSharpe, MetricMaxDrawdown, MetricConsistency, MetricAlpha}
	for _, key := range higher {
		if LowerIsBetter(key) {
			t.Errorf("LowerIsBetter(%q) = true, want false", key)
		}
	}
}

func TestIsMetricKey(t *testing.T) {
	for _, key := range MetricKeys {
		if !IsMetricKey(key) {
			t.Errorf("IsMetricKey(%q) = false, want true", key)
		}
	}
	if IsMetricKey("momentum") {
		t.Error("IsMetricKey(momentum) = true, want false")
	}
}

func TestMetricsBundle_JSONOmitsNil(t *testing.T) {
	bundle := &MetricsBundle{
		SchemeCode:  "118834",
		Return1Y:    Float64Ptr(12.5),
		MaxDrawdown: 0,
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, `"return_1y":12.5`) {
		t.Errorf("Expected return_1y in JSON, got %s", s)
	}
	if strings.Contains(s, "return_3y") {
		t.Errorf("Expected nil return_3y omitted from JSON, got %s", s)
	}
	// Max drawdown is always present, even at zero
	if !strings.Contains(s, `"max_drawdown":0`) {
		t.Errorf("Expected max_drawdown in JSON, got %s", s)
	}
}
