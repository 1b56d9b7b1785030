package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/pkg/config"
	"github.com/wonny/fundranker/pkg/logger"
)

func testBuilder() *Builder {
	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
	return NewBuilder(DefaultConfig(), log)
}

func TestBuilder_Build(t *testing.T) {
	builder := testBuilder()

	funds := []contracts.Fund{
		{SchemeCode: "120503", Name: "Axis Small Cap Fund - Direct Plan - Growth"},
		{SchemeCode: "118989", Name: "HDFC Mid-Cap Opportunities Fund - Direct Plan - Growth"},
		{SchemeCode: "119551", Name: "Nippon India Small Cap Fund - Direct Plan - Growth"},
		{SchemeCode: "120465", Name: "SBI Small Cap Fund - Regular Plan - Growth"},
		{SchemeCode: "140228", Name: "Quant Small Cap Fund - Direct Plan - IDCW"},
		{SchemeCode: "102885", Name: "Some Unclassifiable Opportunities Fund"},
		{SchemeCode: "", Name: "Tata Small Cap Fund - Direct Plan - Growth"},
	}

	cohorts := builder.Build(funds)

	// One cohort per rule, even when empty
	require.Len(t, cohorts, len(DefaultConfig().Rules))

	small := cohorts["smallcap"]
	require.NotNil(t, small)
	assert.Equal(t, 2, small.Count())
	assert.True(t, small.Contains("120503"))
	assert.True(t, small.Contains("119551"))

	// Regular plan and payout variant land in Excluded with reasons
	assert.Equal(t, "not a direct plan", small.Excluded["120465"])
	assert.Equal(t, "payout variant", small.Excluded["140228"])

	mid := cohorts["midcap"]
	require.NotNil(t, mid)
	assert.Equal(t, 1, mid.Count())
	assert.Equal(t, "midcap", mid.Funds[0].Category, "category label is stamped onto the fund")

	// Unclassifiable and code-less funds appear nowhere
	for _, cohort := range cohorts {
		assert.False(t, cohort.Contains("102885"))
		assert.False(t, cohort.IsExcluded("102885"))
	}
}

func TestBuilder_Classify(t *testing.T) {
	builder := testBuilder()

	tests := []struct {
		name string
		want string
	}{
		{"Axis Small Cap Fund - Direct Plan - Growth", "smallcap"},
		{"Kotak Emerging Equity Mid Cap Fund", "midcap"},
		{"ICICI Prudential Bluechip Large-Cap Fund", "largecap"},
		{"UTI Nifty 50 Index Fund", "index"},
		{"Navi Sensex Fund", "index"},
		{"Mirae Asset Tax Saver Fund", "elss"},
		{"Quant ELSS Fund - Direct Plan", "elss"},
		{"HDFC Balanced Advantage Fund", "hybrid"},
		{"Kotak Equity Arbitrage Fund", "hybrid"},
		{"SBI Liquid Fund", "debt"},
		{"ICICI Prudential Gilt Fund", "debt"},
		{"Nippon India Banking & Financial Services Fund", "sectoral"},
		{"SBI Healthcare Opportunities Fund", "sectoral"},
		{"Parag Parikh Flexi Cap Fund", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, builder.Classify(tt.name))
		})
	}
}

func TestBuilder_Classify_FirstRuleWins(t *testing.T) {
	builder := testBuilder()

	// Matches both smallcap ("small cap") and index ("nifty");
	// smallcap is checked first.
	assert.Equal(t, "smallcap", builder.Classify("Motilal Oswal Nifty Smallcap 250 Index Fund"))
}

func TestBuilder_checkExclusion(t *testing.T) {
	builder := testBuilder()

	tests := []struct {
		name string
		fund contracts.Fund
		want string
	}{
		{
			name: "direct growth plan passes",
			fund: contracts.Fund{SchemeCode: "120503", Name: "Axis Small Cap Fund - Direct Plan - Growth"},
			want: "",
		},
		{
			name: "regular plan",
			fund: contracts.Fund{SchemeCode: "120465", Name: "SBI Small Cap Fund - Regular Plan - Growth"},
			want: "not a direct plan",
		},
		{
			name: "idcw variant",
			fund: contracts.Fund{SchemeCode: "140228", Name: "Quant Small Cap Fund - Direct Plan - IDCW"},
			want: "payout variant",
		},
		{
			name: "dividend variant",
			fund: contracts.Fund{SchemeCode: "100377", Name: "HDFC Equity Fund - Direct Plan - Dividend Payout"},
			want: "payout variant",
		},
		{
			name: "bonus variant",
			fund: contracts.Fund{SchemeCode: "100378", Name: "Old Scheme - Direct - Bonus Option"},
			want: "payout variant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := builder.checkExclusion(tt.fund)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuilder_DirectOnlyDisabled(t *testing.T) {
	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
	cfg := DefaultConfig()
	cfg.DirectOnly = false
	builder := NewBuilder(cfg, log)

	cohorts := builder.Build([]contracts.Fund{
		{SchemeCode: "120465", Name: "SBI Small Cap Fund - Regular Plan - Growth"},
	})

	assert.True(t, cohorts["smallcap"].Contains("120465"))
}
