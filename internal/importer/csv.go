package importer

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"fbpanel/internal/dataset"
	pipeerr "fbpanel/internal/errors"
	"fbpanel/internal/panel"
)

// dateLayouts covers the date spellings found across the source
// vintages.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"2-Jan-2006",
}

// ReadCallReports reads the annotated call-report table into merger
// observations. A malformed resolution date yields a zero date for that
// record and a reconciliation warning, never a fatal error; downstream
// joins treat the record as non-joinable on date.
func ReadCallReports(path string, src Source, warnings *pipeerr.WarningCounter, logger *slog.Logger) ([]panel.Observation, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if warnings == nil {
		warnings = pipeerr.NewWarningCounter()
	}

	records, columns, err := readCSV(path, src)
	if err != nil {
		return nil, err
	}

	var observations []panel.Observation
	badDates := 0
	for _, row := range records {
		bankID := cellString(row, columns["bank_id"])
		year, ok := cellInt(row, columns["year"])
		if bankID == "" || !ok {
			warnings.Add(pipeerr.WarnReconciliation, 1)
			continue
		}

		obs := panel.Observation{
			Record: dataset.BankRecord{
				BankID:      bankID,
				Year:        year,
				Quarter:     optInt(row, columns, "quarter"),
				Kind:        panelKindForYear(year),
				Assets:      optFloat(row, columns, "assets"),
				Loans:       optFloat(row, columns, "loans"),
				Deposits:    optFloat(row, columns, "deposits"),
				Equity:      optFloat(row, columns, "equity"),
				Surplus:     optFloat(row, columns, "surplus"),
				Circulation: optFloat(row, columns, "circulation"),
				Cash:        optFloat(row, columns, "cash"),
				Bonds:       optFloat(row, columns, "bonds"),
			},
			Vintage:         optInt(row, columns, "vintage"),
			LastBeforeEvent: parseBool(cellString(row, columns["last_before_event"])),
			EndCause:        ParseEndCause(optString(row, columns, "end_cause")),
			Dividends:       optFloat(row, columns, "dividends"),
		}

		if raw := optString(row, columns, "resolution_date"); raw != "" {
			date, ok := parseDate(raw)
			if !ok {
				badDates++
				warnings.Add(pipeerr.WarnReconciliation, 1)
				logger.Warn("malformed resolution date, record left non-joinable",
					slog.String("bank_id", bankID),
					slog.String("raw", raw))
			}
			obs.ResolutionDate = date
		}

		observations = append(observations, obs)
	}

	logger.Info("imported call reports",
		slog.String("source", src.Name),
		slog.Int("records", len(observations)),
		slog.Int("malformed_dates", badDates))
	return observations, nil
}

// ReadReceiverships reads the receivership ledger.
func ReadReceiverships(path string, src Source, warnings *pipeerr.WarningCounter, logger *slog.Logger) ([]dataset.ReceivershipRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if warnings == nil {
		warnings = pipeerr.NewWarningCounter()
	}

	records, columns, err := readCSV(path, src)
	if err != nil {
		return nil, err
	}

	var out []dataset.ReceivershipRecord
	for _, row := range records {
		bankID := cellString(row, columns["bank_id"])
		if bankID == "" {
			warnings.Add(pipeerr.WarnReconciliation, 1)
			continue
		}

		rec := dataset.ReceivershipRecord{
			BankID:              bankID,
			EndCause:            ParseEndCause(cellString(row, columns["end_cause"])),
			Dividends:           optFloat(row, columns, "dividends"),
			GoodAssets:          optFloat(row, columns, "good_assets"),
			DoubtfulAssets:      optFloat(row, columns, "doubtful_assets"),
			WorthlessAssets:     optFloat(row, columns, "worthless_assets"),
			AdditionalAssets:    optFloat(row, columns, "additional_assets"),
			CollectedFromAssets: optFloat(row, columns, "collected_from_assets"),
		}

		if raw := cellString(row, columns["receivership_date"]); raw != "" {
			date, ok := parseDate(raw)
			if !ok {
				warnings.Add(pipeerr.WarnReconciliation, 1)
				logger.Warn("malformed receivership date",
					slog.String("bank_id", bankID),
					slog.String("raw", raw))
			}
			rec.ReceivershipDate = date
		}

		out = append(out, rec)
	}

	logger.Info("imported receiverships",
		slog.String("source", src.Name),
		slog.Int("records", len(out)))
	return out, nil
}

// readCSV opens a CSV source, resolves its header against the schema
// mapping, and returns the data rows.
func readCSV(path string, src Source) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, pipeerr.NewMissingSource(src.Name, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", src.Name, err)
	}
	if len(rows) == 0 {
		return nil, nil, &pipeerr.SchemaMismatchError{Source: src.Name, Version: src.Schema.Version}
	}

	columns, err := src.Schema.Resolve(src.Name, rows[0])
	if err != nil {
		return nil, nil, err
	}
	return rows[1:], columns, nil
}

// ParseEndCause maps the source closure-type spellings onto the enum.
func ParseEndCause(s string) dataset.EndCause {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "receivership", "failed", "failure":
		return dataset.CauseReceivership
	case "voluntary_liquidation", "voluntary liquidation", "liquidated":
		return dataset.CauseVoluntaryLiquidation
	case "other", "merged", "consolidated", "expired":
		return dataset.CauseOther
	default:
		return dataset.CauseUnknown
	}
}

// panelKindForYear assigns the sub-panel by era: the historical
// national-bank panel runs through 1934, the modern FDIC panel after.
func panelKindForYear(year int) dataset.PanelKind {
	if year <= 1934 {
		return dataset.PanelHistorical
	}
	return dataset.PanelModern
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y":
		return true
	default:
		return false
	}
}

func optString(row []string, columns map[string]int, field string) string {
	col, ok := columns[field]
	if !ok {
		return ""
	}
	return cellString(row, col)
}

func optInt(row []string, columns map[string]int, field string) int {
	col, ok := columns[field]
	if !ok {
		return 0
	}
	v, ok := cellInt(row, col)
	if !ok {
		return 0
	}
	return v
}

// optFloat returns the missing sentinel for absent columns and
// unparseable cells; a blank cell is missing data, not zero.
func optFloat(row []string, columns map[string]int, field string) float64 {
	col, ok := columns[field]
	if !ok {
		return dataset.Missing()
	}
	v, ok := cellFloat(row, col)
	if !ok {
		return dataset.Missing()
	}
	return v
}
