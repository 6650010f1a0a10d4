package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fbpanel/internal/dataset"
	"fbpanel/internal/summary"
)

// WriteEraSummaryTable renders the grouped statistics as a fixed-width
// publication table, atomically.
func WriteEraSummaryTable(path, variable string, stats []summary.GroupStats) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Descriptive statistics: %s\n\n", variable)
	fmt.Fprintf(&b, "%-20s %8s %12s %12s %12s %12s %12s %12s\n",
		"Group", "N", "Mean", "SD", "P10", "P25", "P75", "P90")
	b.WriteString(strings.Repeat("-", 106))
	b.WriteByte('\n')

	for _, g := range stats {
		fmt.Fprintf(&b, "%-20s %8d %12s %12s %12s %12s %12s %12s\n",
			g.Group, g.Stats.N,
			tableCell(g.Stats.Mean), tableCell(g.Stats.SD),
			tableCell(g.Stats.P10), tableCell(g.Stats.P25),
			tableCell(g.Stats.P75), tableCell(g.Stats.P90))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("write table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func tableCell(v float64) string {
	if dataset.IsMissing(v) {
		return "."
	}
	return fmt.Sprintf("%.3f", v)
}
