// Package exporter writes the pipeline artifacts: CSV files for
// programmatic consumption and fixed-width text tables for publication.
// Every write is atomic (temp file in the target directory, then
// rename) so a crash mid-run never leaves a truncated artifact a later
// stage could mistake for a complete one.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"fbpanel/internal/dataset"
)

// CSVWriter writes CSV artifacts.
type CSVWriter struct {
	logger *slog.Logger

	// BOMPrefix adds a UTF-8 BOM so spreadsheet tools detect encoding.
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer. A nil logger falls back to
// slog.Default.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger, BOMPrefix: true}
}

// Write writes headers and records to path atomically.
func (w *CSVWriter) Write(path string, headers []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if w.BOMPrefix {
		if _, err := tmp.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(tmp)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}

	w.logger.Info("wrote CSV artifact",
		slog.String("path", path),
		slog.Int("records", len(records)))
	return nil
}

// Cell formats one value for CSV output. Missing values render as the
// empty string, never as zero.
func Cell(v float64) string {
	if dataset.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// IntCell formats an integer, rendering 0 buckets/codes as empty when
// zeroAsEmpty is set.
func IntCell(v int, zeroAsEmpty bool) string {
	if zeroAsEmpty && v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
