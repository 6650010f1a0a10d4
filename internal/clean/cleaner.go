// Package clean nulls out panel variables outside their applicable
// collection ranges, reflecting known discontinuities in the source
// data. It must run after derived metrics that consume the raw values
// and before any aggregate statistic does, since the nulling changes
// denominators in later ratios.
package clean

import (
	"log/slog"

	"fbpanel/internal/dataset"
)

// Rule declares the closed year range in which one variable was
// actually collected. Outside it the variable is overwritten with
// missing.
type Rule struct {
	Field     string
	StartYear int
	EndYear   int
}

// fieldAccessors maps canonical variable names to their location on a
// panel row. A rule naming an unknown field is a configuration error.
var fieldAccessors = map[string]func(*dataset.PanelRow) *float64{
	"assets":      func(r *dataset.PanelRow) *float64 { return &r.Assets },
	"loans":       func(r *dataset.PanelRow) *float64 { return &r.Loans },
	"deposits":    func(r *dataset.PanelRow) *float64 { return &r.Deposits },
	"equity":      func(r *dataset.PanelRow) *float64 { return &r.Equity },
	"surplus":     func(r *dataset.PanelRow) *float64 { return &r.Surplus },
	"circulation": func(r *dataset.PanelRow) *float64 { return &r.Circulation },
	"cash":        func(r *dataset.PanelRow) *float64 { return &r.Cash },
	"bonds":       func(r *dataset.PanelRow) *float64 { return &r.Bonds },
	"dividends":   func(r *dataset.PanelRow) *float64 { return &r.Dividends },
	"good_assets": func(r *dataset.PanelRow) *float64 { return &r.GoodAssets },
	"collected_from_assets": func(r *dataset.PanelRow) *float64 {
		return &r.CollectedFromAssets
	},
}

// KnownField reports whether the cleaner can address the named field.
func KnownField(name string) bool {
	_, ok := fieldAccessors[name]
	return ok
}

// DefaultRules encodes the known collection ranges of the historical
// sources. Circulation reporting ends with the national bank note
// retirement; the receivership asset-quality breakdown was only
// tabulated through 1928.
var DefaultRules = []Rule{
	{Field: "circulation", StartYear: 1863, EndYear: 1935},
	{Field: "surplus", StartYear: 1863, EndYear: 1960},
	{Field: "good_assets", StartYear: 1863, EndYear: 1928},
	{Field: "collected_from_assets", StartYear: 1863, EndYear: 1928},
}

// Cleaner applies era-conditional nulling rules to panel rows.
type Cleaner struct {
	rules  []Rule
	logger *slog.Logger
}

// NewCleaner creates a cleaner for the given rules. A nil logger falls
// back to slog.Default.
func NewCleaner(rules []Rule, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{rules: rules, logger: logger}
}

// Stats counts the values nulled per field in one Apply call.
type Stats struct {
	Nulled map[string]int
}

// Apply overwrites each ruled variable with missing on every row whose
// year falls outside the rule's applicable range. Rows inside the range
// are untouched.
func (c *Cleaner) Apply(rows []dataset.PanelRow) Stats {
	stats := Stats{Nulled: make(map[string]int)}

	for _, rule := range c.rules {
		access, ok := fieldAccessors[rule.Field]
		if !ok {
			c.logger.Warn("era-conditional rule names unknown field, skipped",
				slog.String("field", rule.Field))
			continue
		}
		for i := range rows {
			if rows[i].Year >= rule.StartYear && rows[i].Year <= rule.EndYear {
				continue
			}
			p := access(&rows[i])
			if dataset.IsMissing(*p) {
				continue
			}
			*p = dataset.Missing()
			stats.Nulled[rule.Field]++
		}
	}

	for field, n := range stats.Nulled {
		c.logger.Info("nulled out-of-range values",
			slog.String("field", field),
			slog.Int("count", n))
	}
	return stats
}
