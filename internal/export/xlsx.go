package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/fundranker/internal/contracts"
)

const sheetName = "Recommendations"

// WriteXLSX writes the recommendations workbook for a run and returns
// its path. Metric cells hold native numbers; missing metrics stay
// empty.
func (e *Exporter) WriteXLSX(results []*contracts.RankingResult, bundles map[string]*contracts.MetricsBundle, date time.Time) (string, error) {
	if err := e.ensureDir(); err != nil {
		return "", err
	}
	path := filepath.Join(e.dir, e.filename("recommendations", date, "xlsx"))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}

	cols := header()
	headerRow := make([]interface{}, len(cols))
	for i, c := range cols {
		headerRow[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return "", err
	}

	rows := buildRows(results, bundles)
	for i, r := range rows {
		values := []interface{}{
			r.category,
			r.strategy,
			r.rank,
			r.schemeCode,
			r.name,
			r.score,
		}
		for _, m := range r.metrics {
			if m == nil {
				values = append(values, nil)
				continue
			}
			values = append(values, *m)
		}
		values = append(values, r.spanDays)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return "", err
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		end, _ := excelize.CoordinatesToCellName(len(cols), 1)
		f.SetCellStyle(sheetName, "A1", end, style)
	}
	f.SetColWidth(sheetName, "E", "E", 44)

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}

	e.logger.WithFields(map[string]interface{}{
		"path": path,
		"rows": len(rows),
	}).Info("Wrote recommendations workbook")
	return path, nil
}
