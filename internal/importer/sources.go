package importer

// Source declares one named input artifact: where it lives under the
// source directory and which schema mapping resolves its columns.
// MissingSourceError messages name the artifact and the expected path.
type Source struct {
	Name     string
	Filename string
	Sheet    string // workbook sources only
	Schema   SchemaMapping
}

// The fixed set of named sources this pipeline targets.
var (
	// Modern quarterly real GDP, authoritative from the cutover year on.
	SourceGDPModern = Source{
		Name:     "gdp_modern",
		Filename: "gdp_quarterly_modern.xlsx",
		Sheet:    "GDP",
		Schema: SchemaMapping{
			Version: 2,
			Fields: []Field{
				{Name: "year", Accepted: []string{"year", "yr"}},
				{Name: "quarter", Accepted: []string{"quarter", "qtr", "q"}, Optional: true},
				{Name: "value", Accepted: []string{"real_gdp", "gdp", "real gdp", "value"}},
			},
		},
	}

	// Historical annual GNP estimates covering the pre-cutover era.
	SourceGNPHistorical = Source{
		Name:     "gnp_historical",
		Filename: "gnp_annual_historical.xlsx",
		Sheet:    "GNP",
		Schema: SchemaMapping{
			Version: 2,
			Fields: []Field{
				{Name: "year", Accepted: []string{"year", "yr"}},
				{Name: "value", Accepted: []string{"real_gnp", "gnp", "real gnp", "value"}},
			},
		},
	}

	// Annual bond yields by ticker.
	SourceBondYields = Source{
		Name:     "bond_yields",
		Filename: "bond_yields_annual.xlsx",
		Sheet:    "Yields",
		Schema: SchemaMapping{
			Version: 1,
			Fields: []Field{
				{Name: "year", Accepted: []string{"year", "yr"}},
				{Name: "ticker", Accepted: []string{"ticker", "series"}},
				{Name: "value", Accepted: []string{"yield", "value"}},
			},
		},
	}

	// Call reports annotated with the failure information known for
	// each record (resolution date, end cause, dividends).
	SourceCallReports = Source{
		Name:     "call_reports",
		Filename: "call_reports.csv",
		Schema: SchemaMapping{
			Version: 3,
			Fields: []Field{
				{Name: "bank_id", Accepted: []string{"bank_id", "charter", "charter_number", "cert"}},
				{Name: "year", Accepted: []string{"year", "call_year"}},
				{Name: "quarter", Accepted: []string{"quarter", "call_quarter"}, Optional: true},
				{Name: "vintage", Accepted: []string{"vintage", "data_vintage"}, Optional: true},
				{Name: "assets", Accepted: []string{"total_assets", "assets"}},
				{Name: "loans", Accepted: []string{"total_loans", "loans", "loans_and_discounts"}, Optional: true},
				{Name: "deposits", Accepted: []string{"total_deposits", "deposits"}, Optional: true},
				{Name: "equity", Accepted: []string{"equity", "capital", "capital_stock"}, Optional: true},
				{Name: "surplus", Accepted: []string{"surplus", "surplus_fund"}, Optional: true},
				{Name: "circulation", Accepted: []string{"circulation", "notes_outstanding"}, Optional: true},
				{Name: "cash", Accepted: []string{"cash", "specie_and_legal_tender"}, Optional: true},
				{Name: "bonds", Accepted: []string{"bonds", "us_bonds"}, Optional: true},
				{Name: "last_before_event", Accepted: []string{"last_before_event", "last_call", "is_last_call"}},
				{Name: "resolution_date", Accepted: []string{"resolution_date", "receivership_date", "closing_date"}, Optional: true},
				{Name: "end_cause", Accepted: []string{"end_cause", "cause", "closure_type"}, Optional: true},
				{Name: "dividends", Accepted: []string{"dividends", "dividends_paid_pct", "total_dividends"}, Optional: true},
			},
		},
	}

	// Receivership ledger with the asset-quality breakdown.
	SourceReceiverships = Source{
		Name:     "receiverships",
		Filename: "receiverships.csv",
		Schema: SchemaMapping{
			Version: 2,
			Fields: []Field{
				{Name: "bank_id", Accepted: []string{"bank_id", "charter", "charter_number"}},
				{Name: "receivership_date", Accepted: []string{"receivership_date", "date_of_failure", "closing_date"}},
				{Name: "end_cause", Accepted: []string{"end_cause", "cause", "closure_type"}},
				{Name: "dividends", Accepted: []string{"dividends", "dividends_paid_pct"}, Optional: true},
				{Name: "good_assets", Accepted: []string{"good_assets", "assets_good"}, Optional: true},
				{Name: "doubtful_assets", Accepted: []string{"doubtful_assets", "assets_doubtful"}, Optional: true},
				{Name: "worthless_assets", Accepted: []string{"worthless_assets", "assets_worthless"}, Optional: true},
				{Name: "additional_assets", Accepted: []string{"additional_assets", "assets_additional"}, Optional: true},
				{Name: "collected_from_assets", Accepted: []string{"collected_from_assets", "collections"}, Optional: true},
			},
		},
	}
)
