package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundranker/pkg/config"
	"github.com/wonny/fundranker/pkg/httputil"
	"github.com/wonny/fundranker/pkg/logger"
)

func testAPIClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
	}
	log := logger.New(cfg)
	return NewClient(httputil.New(cfg, log).DisableRetry(), log, server.URL)
}

func TestListFunds(t *testing.T) {
	client := testAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mf", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"schemeCode":100027,"schemeName":"Grindlays Super Saver Income Fund-GSSIF-Half Yearly Dividend"},
			{"schemeCode":100028,"schemeName":""},
			{"schemeCode":119551,"schemeName":"Axis Banking & PSU Debt Fund - Direct Plan - Growth Option"}
		]`))
	})

	funds, err := client.ListFunds(context.Background())
	require.NoError(t, err)

	// The unnamed scheme is dropped
	require.Len(t, funds, 2)
	assert.Equal(t, "100027", funds[0].SchemeCode)
	assert.Equal(t, "119551", funds[1].SchemeCode)
	assert.Equal(t, "Axis Banking & PSU Debt Fund - Direct Plan - Growth Option", funds[1].Name)
}

func TestFetchSeries(t *testing.T) {
	client := testAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mf/120503", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"meta":{
				"fund_house":"Axis Mutual Fund",
				"scheme_type":"Open Ended Schemes",
				"scheme_category":"Equity Scheme - Small Cap Fund",
				"scheme_code":120503,
				"scheme_name":"Axis Small Cap Fund - Direct Plan - Growth"
			},
			"data":[
				{"date":"21-08-2026","nav":"112.45000"},
				{"date":"20-08-2026","nav":"111.98000"},
				{"date":"20-08-2026","nav":"111.98000"},
				{"date":"19-08-2026","nav":"N.A."},
				{"date":"18-08-2026","nav":"0.00000"},
				{"date":"not-a-date","nav":"110.00000"},
				{"date":"14-08-2026","nav":"109.87000"}
			],
			"status":"SUCCESS"
		}`))
	})

	series, err := client.FetchSeries(context.Background(), "120503")
	require.NoError(t, err)

	// Duplicate date, unparseable NAV, zero NAV and bad date are all
	// dropped; the rest come back oldest first.
	require.Equal(t, 3, series.Len())
	assert.Equal(t, time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC), series.First().Date)
	assert.Equal(t, 109.87, series.First().NAV)
	assert.Equal(t, time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC), series.Latest().Date)
	assert.Equal(t, 112.45, series.Latest().NAV)
}

func TestFetchSeriesUpstreamFailure(t *testing.T) {
	client := testAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meta":{},"data":[],"status":"Fail"}`))
	})

	_, err := client.FetchSeries(context.Background(), "999999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream status")
}

func TestFetchSeriesNoData(t *testing.T) {
	client := testAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meta":{},"data":[],"status":"SUCCESS"}`))
	})

	_, err := client.FetchSeries(context.Background(), "120503")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no NAV data")
}

func TestFetchSeriesHTTPError(t *testing.T) {
	client := testAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := client.FetchSeries(context.Background(), "120503")
	require.Error(t, err)
}
