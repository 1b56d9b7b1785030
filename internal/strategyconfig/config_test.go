package strategyconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
meta:
  config_id: test-ranking
  version: "1"

ranking:
  top_n: 3

universe:
  direct_only: true
  categories:
    - category: smallcap
      keywords: ["small cap", "smallcap"]
    - category: debt
      keywords: ["debt", "liquid"]

strategies:
  - name: returns-based
    missing_penalty: 0.1
    weights:
      return_1y: 0.4
      return_3y: 0.6

benchmarks:
  rules:
    - match: "nifty 50"
      scheme: "120716"
      name: "NIFTY 50"
  defaults:
    smallcap:
      scheme: "147623"
      name: "NIFTY Smallcap 250"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "strategy.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, yamlData, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.ConfigID != "test-ranking" {
		t.Errorf("config_id = %s, want test-ranking", cfg.Meta.ConfigID)
	}
	if cfg.Ranking.TopN != 3 {
		t.Errorf("top_n = %d, want 3", cfg.Ranking.TopN)
	}
	if len(cfg.Universe.Categories) != 2 {
		t.Errorf("got %d categories, want 2", len(cfg.Universe.Categories))
	}
	if len(cfg.Strategies) != 1 {
		t.Fatalf("got %d strategies, want 1", len(cfg.Strategies))
	}
	if cfg.Strategies[0].Weights["return_3y"] != 0.6 {
		t.Errorf("return_3y weight = %v, want 0.6", cfg.Strategies[0].Weights["return_3y"])
	}
	if cfg.Strategies[0].MissingPenalty != 0.1 {
		t.Errorf("missing_penalty = %v, want 0.1", cfg.Strategies[0].MissingPenalty)
	}
	if len(yamlData) == 0 {
		t.Error("expected raw yaml bytes")
	}

	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(hash))
	}

	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}
}

func TestLoadUnknownField(t *testing.T) {
	_, _, err := Load(writeConfig(t, sampleYAML+"\nextra_section: true\n"))
	if err == nil {
		t.Fatal("expected unknown field to fail the load")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected missing file to fail the load")
	}
}

func TestValidateDefault(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config must validate, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "missing config id",
			mutate:    func(c *Config) { c.Meta.ConfigID = "" },
			wantField: "meta.config_id",
		},
		{
			name:      "zero top n",
			mutate:    func(c *Config) { c.Ranking.TopN = 0 },
			wantField: "ranking.top_n",
		},
		{
			name:      "no categories",
			mutate:    func(c *Config) { c.Universe.Categories = nil },
			wantField: "universe.categories",
		},
		{
			name: "duplicate category",
			mutate: func(c *Config) {
				c.Universe.Categories = append(c.Universe.Categories,
					CategoryRule{Category: "smallcap", Keywords: []string{"again"}})
			},
			wantField: "category",
		},
		{
			name:      "rule without keywords",
			mutate:    func(c *Config) { c.Universe.Categories[0].Keywords = nil },
			wantField: "keywords",
		},
		{
			name:      "no strategies",
			mutate:    func(c *Config) { c.Strategies = nil },
			wantField: "strategies",
		},
		{
			name: "duplicate strategy",
			mutate: func(c *Config) {
				c.Strategies = append(c.Strategies, c.Strategies[0])
			},
			wantField: "name",
		},
		{
			name: "unknown metric",
			mutate: func(c *Config) {
				c.Strategies[0].Weights["expense_ratio"] = 0.1
			},
			wantField: "expense_ratio",
		},
		{
			name: "negative weight",
			mutate: func(c *Config) {
				c.Strategies[0].Weights["return_1y"] = -0.2
			},
			wantField: "return_1y",
		},
		{
			name: "weights exceed budget",
			mutate: func(c *Config) {
				c.Strategies[0].Weights["return_1y"] = 0.9
			},
			wantField: "weights",
		},
		{
			name: "missing penalty out of range",
			mutate: func(c *Config) {
				c.Strategies[0].MissingPenalty = 1.5
			},
			wantField: "missing_penalty",
		},
		{
			name: "benchmark rule without match",
			mutate: func(c *Config) {
				c.Benchmarks.Rules[0].Match = ""
			},
			wantField: "match",
		},
		{
			name: "benchmark default for unknown category",
			mutate: func(c *Config) {
				c.Benchmarks.Defaults["commodity"] = BenchmarkRef{Scheme: "1", Name: "Gold"}
			},
			wantField: "commodity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation to fail")
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if !strings.Contains(verr.Field, tt.wantField) {
				t.Errorf("field = %s, want it to mention %s", verr.Field, tt.wantField)
			}
		})
	}
}

func TestWarn(t *testing.T) {
	// hybrid and debt carry no benchmark default out of the box
	warnings := Warn(Default())
	if countCode(warnings, "NO_BENCHMARK_DEFAULT") != 2 {
		t.Errorf("expected 2 NO_BENCHMARK_DEFAULT warnings, got %v", warnings)
	}

	cfg := Default()
	cfg.Strategies[0].Weights = map[string]float64{"return_1y": 0.5}
	cfg.Universe.Categories[1].Keywords = append(cfg.Universe.Categories[1].Keywords, "small cap")

	warnings = Warn(cfg)
	if countCode(warnings, "UNDERWEIGHTED_STRATEGY") != 1 {
		t.Errorf("expected an UNDERWEIGHTED_STRATEGY warning, got %v", warnings)
	}
	if countCode(warnings, "SHADOWED_KEYWORD") != 1 {
		t.Errorf("expected a SHADOWED_KEYWORD warning, got %v", warnings)
	}
}

func countCode(warnings []Warning, code string) int {
	n := 0
	for _, w := range warnings {
		if w.Code == code {
			n++
		}
	}
	return n
}

func TestHashChangesWithConfig(t *testing.T) {
	base, _ := Hash(Default())

	cfg := Default()
	cfg.Ranking.TopN = 7
	changed, _ := Hash(cfg)

	if base == changed {
		t.Error("hash must change when settings change")
	}
}

func TestNewSnapshot(t *testing.T) {
	cfg := Default()
	yamlData := []byte("raw yaml")

	snapshot, err := NewSnapshot(cfg, yamlData)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}

	if snapshot.ConfigID != "fund-ranking-default" {
		t.Errorf("config_id = %s", snapshot.ConfigID)
	}
	if snapshot.ConfigYAML != "raw yaml" {
		t.Errorf("config_yaml = %s", snapshot.ConfigYAML)
	}
	if len(snapshot.ConfigHash) != 64 {
		t.Errorf("hash length = %d, want 64", len(snapshot.ConfigHash))
	}
	if snapshot.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}
