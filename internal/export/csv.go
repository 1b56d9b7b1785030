package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/wonny/fundranker/internal/contracts"
)

// WriteCSV writes the recommendations file for a run and returns its
// path. Missing metrics become empty cells, never zeros.
func (e *Exporter) WriteCSV(results []*contracts.RankingResult, bundles map[string]*contracts.MetricsBundle, date time.Time) (string, error) {
	if err := e.ensureDir(); err != nil {
		return "", err
	}
	path := filepath.Join(e.dir, e.filename("recommendations", date, "csv"))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header()); err != nil {
		return "", err
	}

	rows := buildRows(results, bundles)
	for _, r := range rows {
		record := []string{
			r.category,
			r.strategy,
			strconv.Itoa(r.rank),
			r.schemeCode,
			r.name,
			strconv.FormatFloat(r.score, 'f', 4, 64),
		}
		for _, m := range r.metrics {
			if m == nil {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(*m, 'f', 2, 64))
		}
		record = append(record, strconv.Itoa(r.spanDays))

		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	e.logger.WithFields(map[string]interface{}{
		"path": path,
		"rows": len(rows),
	}).Info("Wrote recommendations CSV")
	return path, nil
}
