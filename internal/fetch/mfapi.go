package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/pkg/httputil"
	"github.com/wonny/fundranker/pkg/logger"
)

// navDateLayout is the upstream's DD-MM-YYYY date format.
const navDateLayout = "02-01-2006"

// Client fetches the fund master list and NAV histories from a
// mfapi.in style JSON API.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new NAV API client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// listItem is one fund in the master list response. Scheme codes are
// numbers upstream but strings everywhere in this codebase.
type listItem struct {
	SchemeCode json.Number `json:"schemeCode"`
	SchemeName string      `json:"schemeName"`
}

// historyResponse is the NAV history response for one scheme.
type historyResponse struct {
	Meta struct {
		FundHouse      string      `json:"fund_house"`
		SchemeType     string      `json:"scheme_type"`
		SchemeCategory string      `json:"scheme_category"`
		SchemeCode     json.Number `json:"scheme_code"`
		SchemeName     string      `json:"scheme_name"`
	} `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		NAV  string `json:"nav"`
	} `json:"data"`
	Status string `json:"status"`
}

// ListFunds fetches the full fund master list.
func (c *Client) ListFunds(ctx context.Context) ([]contracts.Fund, error) {
	url := fmt.Sprintf("%s/mf", c.baseURL)

	var items []listItem
	if err := c.httpClient.GetJSON(ctx, url, &items); err != nil {
		return nil, fmt.Errorf("fetch fund list: %w", err)
	}

	funds := make([]contracts.Fund, 0, len(items))
	for _, item := range items {
		if item.SchemeCode.String() == "" || item.SchemeName == "" {
			continue
		}
		funds = append(funds, contracts.Fund{
			SchemeCode: item.SchemeCode.String(),
			Name:       item.SchemeName,
		})
	}

	c.logger.WithField("count", len(funds)).Debug("Fetched fund list")
	return funds, nil
}

// FetchSeries fetches the full NAV history for a scheme. Rows arrive
// newest first with NAV as a string; unparseable or non-positive rows
// are dropped.
func (c *Client) FetchSeries(ctx context.Context, schemeCode string) (*contracts.PriceSeries, error) {
	url := fmt.Sprintf("%s/mf/%s", c.baseURL, schemeCode)

	var hist historyResponse
	if err := c.httpClient.GetJSON(ctx, url, &hist); err != nil {
		return nil, fmt.Errorf("fetch nav history: %w", err)
	}

	if hist.Status != "SUCCESS" {
		return nil, fmt.Errorf("scheme %s: upstream status %q", schemeCode, hist.Status)
	}
	if len(hist.Data) == 0 {
		return nil, fmt.Errorf("scheme %s: no NAV data", schemeCode)
	}

	points := make([]contracts.PricePoint, 0, len(hist.Data))
	skipped := 0

	// Walk oldest to newest, dropping bad rows and duplicate dates
	for i := len(hist.Data) - 1; i >= 0; i-- {
		row := hist.Data[i]

		date, err := time.Parse(navDateLayout, row.Date)
		if err != nil {
			skipped++
			continue
		}
		nav, err := strconv.ParseFloat(row.NAV, 64)
		if err != nil || nav <= 0 {
			skipped++
			continue
		}
		if len(points) > 0 && !points[len(points)-1].Date.Before(date) {
			skipped++
			continue
		}

		points = append(points, contracts.PricePoint{Date: date, NAV: nav})
	}

	series, err := contracts.NewPriceSeries(points)
	if err != nil {
		return nil, fmt.Errorf("scheme %s: %w", schemeCode, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"scheme_code": schemeCode,
		"fund_house":  hist.Meta.FundHouse,
		"rows":        series.Len(),
		"skipped":     skipped,
	}).Debug("Fetched NAV history")

	return series, nil
}
