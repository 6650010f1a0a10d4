package importer

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fbpanel/internal/dataset"
	pipeerr "fbpanel/internal/errors"
)

// maxHeaderScanRows bounds the search for the header row; the macro
// workbooks carry a few title rows above the data.
const maxHeaderScanRows = 10

// ReadAnnualSeries reads one workbook source into an annual series.
// Quarterly sources (a resolved quarter column) are annualized by
// averaging the non-missing quarters of each year.
func ReadAnnualSeries(path string, src Source, logger *slog.Logger) (*dataset.AnnualSeries, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, pipeerr.NewMissingSource(src.Name, path, err)
	}
	defer f.Close()

	rows, err := sheetRows(f, src.Sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name, err)
	}

	headerRow, columns, err := resolveHeader(src, rows)
	if err != nil {
		return nil, err
	}

	yearCol := columns["year"]
	valueCol := columns["value"]
	quarterCol, quarterly := columns["quarter"]

	sums := make(map[int]float64)
	counts := make(map[int]int)
	series := dataset.NewAnnualSeries()

	for _, row := range rows[headerRow+1:] {
		year, ok := cellInt(row, yearCol)
		if !ok {
			continue
		}
		value, ok := cellFloat(row, valueCol)
		if !ok {
			continue
		}
		if quarterly {
			if _, ok := cellInt(row, quarterCol); !ok {
				continue
			}
			sums[year] += value
			counts[year]++
			continue
		}
		series.Set(year, value)
	}

	for year, n := range counts {
		series.Set(year, sums[year]/float64(n))
	}

	logger.Info("imported annual series",
		slog.String("source", src.Name),
		slog.Int("years", series.Len()),
		slog.Bool("annualized_from_quarters", quarterly))
	return series, nil
}

// ReadBondYields reads the per-ticker annual yield sheet into one
// series per ticker.
func ReadBondYields(path string, src Source, logger *slog.Logger) (map[string]*dataset.AnnualSeries, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, pipeerr.NewMissingSource(src.Name, path, err)
	}
	defer f.Close()

	rows, err := sheetRows(f, src.Sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name, err)
	}

	headerRow, columns, err := resolveHeader(src, rows)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*dataset.AnnualSeries)
	for _, row := range rows[headerRow+1:] {
		year, ok := cellInt(row, columns["year"])
		if !ok {
			continue
		}
		ticker := cellString(row, columns["ticker"])
		if ticker == "" {
			continue
		}
		value, ok := cellFloat(row, columns["value"])
		if !ok {
			continue
		}
		s, exists := out[ticker]
		if !exists {
			s = dataset.NewAnnualSeries()
			out[ticker] = s
		}
		s.Set(year, value)
	}

	logger.Info("imported bond yields",
		slog.String("source", src.Name),
		slog.Int("tickers", len(out)))
	return out, nil
}

// sheetRows returns the rows of the declared sheet, falling back to the
// first sheet when the declared name is absent.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if rows, err := f.GetRows(sheet); err == nil {
		return rows, nil
	}
	list := f.GetSheetList()
	if len(list) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(list[0])
}

// resolveHeader scans the leading rows for the one the schema mapping
// can resolve, and returns its index plus the resolved columns.
func resolveHeader(src Source, rows [][]string) (int, map[string]int, error) {
	var lastErr error
	for i := 0; i < len(rows) && i < maxHeaderScanRows; i++ {
		columns, err := src.Schema.Resolve(src.Name, rows[i])
		if err == nil {
			return i, columns, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = &pipeerr.SchemaMismatchError{Source: src.Name, Version: src.Schema.Version}
	}
	return 0, nil, lastErr
}

func cellString(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func cellFloat(row []string, col int) (float64, bool) {
	s := cellString(row, col)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cellInt(row []string, col int) (int, bool) {
	v, ok := cellFloat(row, col)
	if !ok {
		return 0, false
	}
	return int(v), true
}
