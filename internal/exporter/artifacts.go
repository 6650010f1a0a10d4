package exporter

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fbpanel/internal/dataset"
	"fbpanel/internal/predict"
	"fbpanel/internal/summary"
)

// WriteMacroSeries exports the merged annual macro series joined with
// the per-ticker annual bond yields, one column per ticker. A year
// appears when any column has a value; absent values render empty,
// never zero.
func (w *CSVWriter) WriteMacroSeries(path string, s *dataset.AnnualSeries, yields map[string]*dataset.AnnualSeries) error {
	tickers := make([]string, 0, len(yields))
	for t := range yields {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	headers := []string{"year", "real_gdp"}
	for _, t := range tickers {
		headers = append(headers, "yield_"+strings.ToLower(t))
	}

	yearSet := make(map[int]bool)
	for _, year := range s.Years() {
		yearSet[year] = true
	}
	for _, t := range tickers {
		for _, year := range yields[t].Years() {
			yearSet[year] = true
		}
	}
	years := make([]int, 0, len(yearSet))
	for year := range yearSet {
		years = append(years, year)
	}
	sort.Ints(years)

	var records [][]string
	for _, year := range years {
		record := []string{fmt.Sprintf("%d", year), Cell(s.Value(year))}
		for _, t := range tickers {
			record = append(record, Cell(yields[t].Value(year)))
		}
		records = append(records, record)
	}
	return w.Write(path, headers, records)
}

// WritePanel exports the merged failure panel.
func (w *CSVWriter) WritePanel(path string, rows []dataset.PanelRow) error {
	headers := []string{
		"bank_id", "year", "quarter", "panel", "event_index",
		"assets", "loans", "deposits", "equity", "surplus", "circulation",
		"receivership_date", "end_cause", "dividends", "recovery_rate", "full_recovery",
		"good_assets", "doubtful_assets", "worthless_assets",
		"additional_assets", "collected_from_assets",
		"asset_growth_short", "asset_growth_long",
		"growth_quintile_short", "growth_quintile_long", "failed",
	}

	var records [][]string
	for _, r := range rows {
		date := ""
		if !r.ReceivershipDate.IsZero() {
			date = r.ReceivershipDate.Format("2006-01-02")
		}
		full := "0"
		if r.FullRecovery {
			full = "1"
		}
		records = append(records, []string{
			r.BankID,
			IntCell(r.Year, false),
			IntCell(r.Quarter, true),
			r.Kind.String(),
			IntCell(r.EventIndex, false),
			Cell(r.Assets), Cell(r.Loans), Cell(r.Deposits), Cell(r.Equity),
			Cell(r.Surplus), Cell(r.Circulation),
			date,
			r.EndCause.String(),
			Cell(r.Dividends), Cell(r.RecoveryRate), full,
			Cell(r.GoodAssets), Cell(r.DoubtfulAssets), Cell(r.WorthlessAssets),
			Cell(r.AdditionalAssets), Cell(r.CollectedFromAssets),
			Cell(r.AssetGrowthShort), Cell(r.AssetGrowthLong),
			IntCell(r.GrowthQuintileShort, true), IntCell(r.GrowthQuintileLong, true),
			Cell(r.Failed),
		})
	}
	return w.Write(path, headers, records)
}

// WriteEraSummary exports grouped descriptive statistics.
func (w *CSVWriter) WriteEraSummary(path, variable string, stats []summary.GroupStats) error {
	headers := []string{"group", "variable", "n", "mean", "sd", "p1", "p10", "p25", "p75", "p90", "p99"}
	var records [][]string
	for _, g := range stats {
		records = append(records, []string{
			g.Group, variable,
			IntCell(g.Stats.N, false),
			Cell(g.Stats.Mean), Cell(g.Stats.SD),
			Cell(g.Stats.P1), Cell(g.Stats.P10), Cell(g.Stats.P25),
			Cell(g.Stats.P75), Cell(g.Stats.P90), Cell(g.Stats.P99),
		})
	}
	return w.Write(path, headers, records)
}

// WriteScenarios exports the insolvency-share grid.
func (w *CSVWriter) WriteScenarios(path string, cells []summary.ScenarioCell) error {
	headers := []string{"rho", "v", "threshold", "share_deeply_insolvent", "n"}
	var records [][]string
	for _, c := range cells {
		records = append(records, []string{
			Cell(c.Rho), Cell(c.V), Cell(c.Threshold), Cell(c.Share),
			IntCell(c.N, false),
		})
	}
	return w.Write(path, headers, records)
}

// WriteModelFits exports one row per specification: coefficients,
// robust standard errors, and the discrimination statistics.
func (w *CSVWriter) WriteModelFits(path string, fits []*predict.ModelFit) error {
	headers := []string{
		"spec", "start_year", "end_year", "term", "coef", "se_hac",
		"auc_in_sample", "auc_out_of_sample", "failed_windows",
	}

	var records [][]string
	for _, f := range fits {
		if f == nil {
			continue
		}
		for j, coef := range f.Coef {
			term := "intercept"
			if j > 0 && j-1 < len(f.Spec.Regressors) {
				term = f.Spec.Regressors[j-1]
			}
			se := dataset.Missing()
			if f.Covariance != nil {
				se = stdErr(f.Covariance.At(j, j))
			}
			records = append(records, []string{
				f.Spec.Name,
				IntCell(f.StartYear, false), IntCell(f.EndYear, false),
				term, Cell(coef), Cell(se),
				Cell(f.AUCInSample), Cell(f.AUCOutOfSample),
				IntCell(len(f.FailedEndYears), false),
			})
		}
	}
	return w.Write(path, headers, records)
}

// WritePredictions exports the aligned in- and out-of-sample prediction
// vectors for every specification.
func (w *CSVWriter) WritePredictions(path string, fits []*predict.ModelFit, samples []predict.Sample) error {
	headers := []string{"spec", "year", "outcome", "in_sample", "out_of_sample"}
	var records [][]string
	for i, f := range fits {
		if f == nil {
			continue
		}
		s := samples[i]
		for r := 0; r < s.Len(); r++ {
			records = append(records, []string{
				f.Spec.Name,
				IntCell(s.Years[r], false),
				Cell(s.Y[r]),
				Cell(f.InSample[r]),
				Cell(f.OutOfSample[r]),
			})
		}
	}
	return w.Write(path, headers, records)
}

func stdErr(variance float64) float64 {
	if dataset.IsMissing(variance) || variance < 0 {
		return dataset.Missing()
	}
	return math.Sqrt(variance)
}
