// Package export writes recommendation reports for completed ranking
// runs, one row per recommended fund.
package export

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/wonny/fundranker/internal/contracts"
	"github.com/wonny/fundranker/pkg/logger"
)

// reportMetrics are the raw metric columns carried in report files,
// in column order.
var reportMetrics = []string{
	contracts.MetricReturn1Y,
	contracts.MetricReturn3Y,
	contracts.MetricReturn5Y,
	contracts.MetricReturn10Y,
	contracts.MetricVolatility,
	contracts.MetricSharpe,
	contracts.MetricMaxDrawdown,
	contracts.MetricConsistency,
	contracts.MetricAlpha,
}

const dateLayout = "2006-01-02"

// Exporter writes recommendation files into a directory.
type Exporter struct {
	dir    string
	logger *logger.Logger
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string, log *logger.Logger) *Exporter {
	return &Exporter{
		dir:    dir,
		logger: log.WithField("module", "export"),
	}
}

// row is one flattened recommendation line.
type row struct {
	category   string
	strategy   string
	rank       int
	schemeCode string
	name       string
	score      float64
	spanDays   int
	metrics    []*float64 // aligned with reportMetrics, nil when missing
}

// buildRows flattens the top funds of every result, ordered by
// category, strategy and rank. Funds without a metrics bundle still
// get a row with the metric columns empty.
func buildRows(results []*contracts.RankingResult, bundles map[string]*contracts.MetricsBundle) []row {
	var rows []row
	for _, result := range results {
		for _, fund := range result.Top() {
			r := row{
				category:   result.Category,
				strategy:   result.Strategy,
				rank:       fund.Rank,
				schemeCode: fund.SchemeCode,
				name:       fund.Name,
				score:      fund.TotalScore,
				spanDays:   fund.SpanDays,
				metrics:    make([]*float64, len(reportMetrics)),
			}
			if bundle, ok := bundles[fund.SchemeCode]; ok && bundle != nil {
				for i, key := range reportMetrics {
					if v, present := bundle.Metric(key); present {
						value := v
						r.metrics[i] = &value
					}
				}
			}
			rows = append(rows, r)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].category != rows[j].category {
			return rows[i].category < rows[j].category
		}
		if rows[i].strategy != rows[j].strategy {
			return rows[i].strategy < rows[j].strategy
		}
		return rows[i].rank < rows[j].rank
	})
	return rows
}

// header returns the column names in file order.
func header() []string {
	cols := []string{"category", "strategy", "rank", "scheme_code", "fund_name", "score"}
	cols = append(cols, reportMetrics...)
	return append(cols, "span_days")
}

func (e *Exporter) filename(stem string, date time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", stem, date.Format(dateLayout), ext)
}

func (e *Exporter) ensureDir() error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	return nil
}
