package operations

import (
	"context"
	"fmt"
	"log/slog"

	"fbpanel/internal/clean"
	"fbpanel/internal/config"
	"fbpanel/internal/dataset"
	pipeerr "fbpanel/internal/errors"
	"fbpanel/internal/exporter"
	"fbpanel/internal/importer"
	"fbpanel/internal/panel"
	"fbpanel/internal/predict"
	"fbpanel/internal/series"
	"fbpanel/internal/store"
	"fbpanel/internal/summary"
)

// Default insolvency scenario grid, in the legacy parameterization
// (tenths of a percent).
var (
	DefaultScenarioRhos = []float64{0, 25, 50, 75, 100}
	DefaultScenarioVs   = []float64{0, 25, 50, 75, 100}
)

// ImportStep reads every named source into the state.
type ImportStep struct {
	logger *slog.Logger
	rows   int
}

func NewImportStep(logger *slog.Logger) *ImportStep { return &ImportStep{logger: logger} }

func (s *ImportStep) ID() string   { return "import" }
func (s *ImportStep) Name() string { return "Import sources" }
func (s *ImportStep) Rows() int    { return s.rows }

func (s *ImportStep) Validate(state *State) error {
	if !config.FileExists(state.Paths.SourceDir) {
		return pipeerr.NewMissingSource("source directory", state.Paths.SourceDir, fmt.Errorf("not found"))
	}
	return nil
}

func (s *ImportStep) Execute(ctx context.Context, state *State) error {
	var err error

	state.GDPModern, err = importer.ReadAnnualSeries(
		state.Paths.SourcePath(importer.SourceGDPModern.Filename), importer.SourceGDPModern, s.logger)
	if err != nil {
		return err
	}

	state.GNPHistorical, err = importer.ReadAnnualSeries(
		state.Paths.SourcePath(importer.SourceGNPHistorical.Filename), importer.SourceGNPHistorical, s.logger)
	if err != nil {
		return err
	}

	state.BondYields, err = importer.ReadBondYields(
		state.Paths.SourcePath(importer.SourceBondYields.Filename), importer.SourceBondYields, s.logger)
	if err != nil {
		return err
	}

	state.Observations, err = importer.ReadCallReports(
		state.Paths.SourcePath(importer.SourceCallReports.Filename), importer.SourceCallReports,
		state.Warnings, s.logger)
	if err != nil {
		return err
	}

	state.Receiverships, err = importer.ReadReceiverships(
		state.Paths.SourcePath(importer.SourceReceiverships.Filename), importer.SourceReceiverships,
		state.Warnings, s.logger)
	if err != nil {
		return err
	}

	s.rows = len(state.Observations) + len(state.Receiverships)
	return nil
}

// ReconcileStep splices the two GDP estimates onto one annual series.
type ReconcileStep struct {
	logger *slog.Logger
	rows   int
}

func NewReconcileStep(logger *slog.Logger) *ReconcileStep { return &ReconcileStep{logger: logger} }

func (s *ReconcileStep) ID() string   { return "reconcile" }
func (s *ReconcileStep) Name() string { return "Reconcile macro series" }
func (s *ReconcileStep) Rows() int    { return s.rows }

func (s *ReconcileStep) Validate(state *State) error {
	if state.GDPModern == nil || state.GNPHistorical == nil {
		return fmt.Errorf("macro inputs not imported")
	}
	return nil
}

func (s *ReconcileStep) Execute(ctx context.Context, state *State) error {
	rec := series.NewReconciler(s.logger)
	result, err := rec.Splice(state.GDPModern, state.GNPHistorical,
		state.Config.Pipeline.CutoverYear, state.Config.Pipeline.OverlapYear)
	if err != nil {
		return err
	}
	state.MacroSeries = result.Merged
	s.rows = result.Merged.Len()
	return nil
}

// MergeStep builds the failure panel and applies the era-conditional
// cleaning rules. Cleaning runs after the merge derives its growth
// metrics from the raw values and before any aggregate consumes them.
type MergeStep struct {
	logger *slog.Logger
	rows   int
}

func NewMergeStep(logger *slog.Logger) *MergeStep { return &MergeStep{logger: logger} }

func (s *MergeStep) ID() string   { return "merge" }
func (s *MergeStep) Name() string { return "Merge failure panel" }
func (s *MergeStep) Rows() int    { return s.rows }

func (s *MergeStep) Validate(state *State) error {
	if len(state.Observations) == 0 {
		return fmt.Errorf("no call-report observations imported")
	}
	return nil
}

func (s *MergeStep) Execute(ctx context.Context, state *State) error {
	merger := panel.NewMerger(s.logger)
	state.Panel = merger.Merge(state.Observations, state.Receiverships)

	cleaner := clean.NewCleaner(clean.DefaultRules, s.logger)
	cleaner.Apply(state.Panel)

	s.rows = len(state.Panel)
	return nil
}

// ModelStep fits the prediction specifications on the panel.
type ModelStep struct {
	logger *slog.Logger
	rows   int
}

func NewModelStep(logger *slog.Logger) *ModelStep { return &ModelStep{logger: logger} }

func (s *ModelStep) ID() string   { return "model" }
func (s *ModelStep) Name() string { return "Fit prediction models" }
func (s *ModelStep) Rows() int    { return s.rows }

func (s *ModelStep) Validate(state *State) error {
	if len(state.Panel) == 0 {
		return fmt.Errorf("empty panel")
	}
	return nil
}

func (s *ModelStep) Execute(ctx context.Context, state *State) error {
	state.Specs, state.Samples = buildSpecifications(state.Panel)

	p := predict.NewPredictor(predict.Config{
		StartYear:      state.Config.Pipeline.StartYear,
		MaxEndYear:     state.Config.Pipeline.MaxEndYear,
		MinWindow:      state.Config.Pipeline.MinWindow,
		HACLags:        state.Config.Pipeline.HACLags,
		MaxConcurrency: state.Config.Pipeline.MaxConcurrency,
	}, s.logger, state.Warnings)

	fits, err := p.RunAll(ctx, state.Specs, state.Samples)
	if err != nil {
		return err
	}
	state.Fits = fits
	s.rows = len(fits)
	return nil
}

// buildSpecifications extracts the model samples from the panel: bank
// failure regressed on the trailing growth measures, and on the
// solvency ratio.
func buildSpecifications(rows []dataset.PanelRow) ([]predict.Specification, []predict.Sample) {
	specs := []predict.Specification{
		{
			Name:       "failure_on_growth",
			Outcome:    "failed",
			Regressors: []string{"asset_growth_short", "asset_growth_long"},
		},
		{
			Name:       "failure_on_solvency",
			Outcome:    "failed",
			Regressors: []string{"solvency_ratio"},
		},
	}

	growth := predict.Sample{}
	solvency := predict.Sample{}
	for _, r := range rows {
		growth.Years = append(growth.Years, r.Year)
		growth.Y = append(growth.Y, r.Failed)
		growth.X = append(growth.X, []float64{r.AssetGrowthShort, r.AssetGrowthLong})

		solvency.Years = append(solvency.Years, r.Year)
		solvency.Y = append(solvency.Y, r.Failed)
		solvency.X = append(solvency.X, []float64{r.SolvencyRatio()})
	}

	return specs, []predict.Sample{growth, solvency}
}

// SummaryStep computes the era-grouped statistics and the insolvency
// scenario grid.
type SummaryStep struct {
	logger *slog.Logger
	rows   int
}

func NewSummaryStep(logger *slog.Logger) *SummaryStep { return &SummaryStep{logger: logger} }

func (s *SummaryStep) ID() string   { return "summarize" }
func (s *SummaryStep) Name() string { return "Summarize panel" }
func (s *SummaryStep) Rows() int    { return s.rows }

func (s *SummaryStep) Validate(state *State) error {
	if len(state.Panel) == 0 {
		return fmt.Errorf("empty panel")
	}
	return nil
}

func (s *SummaryStep) Execute(ctx context.Context, state *State) error {
	state.EraStats = summary.DescribeByEra(state.Panel, dataset.DefaultEras,
		func(r dataset.PanelRow) float64 { return r.RecoveryRate })

	solvency := make([]float64, len(state.Panel))
	for i, r := range state.Panel {
		solvency[i] = r.SolvencyRatio()
	}
	state.Scenarios = summary.InsolvencyShares(solvency, DefaultScenarioRhos, DefaultScenarioVs)

	s.rows = len(state.EraStats) + len(state.Scenarios)
	return nil
}

// ExportStep writes every output artifact.
type ExportStep struct {
	logger *slog.Logger
	rows   int
}

func NewExportStep(logger *slog.Logger) *ExportStep { return &ExportStep{logger: logger} }

func (s *ExportStep) ID() string   { return "export" }
func (s *ExportStep) Name() string { return "Export artifacts" }
func (s *ExportStep) Rows() int    { return s.rows }

func (s *ExportStep) Validate(state *State) error {
	if state.MacroSeries == nil || len(state.Panel) == 0 {
		return fmt.Errorf("nothing to export")
	}
	return nil
}

func (s *ExportStep) Execute(ctx context.Context, state *State) error {
	w := exporter.NewCSVWriter(s.logger)

	if err := w.WriteMacroSeries(state.Paths.MacroSeriesCSV, state.MacroSeries, state.BondYields); err != nil {
		return err
	}
	if err := w.WritePanel(state.Paths.PanelCSV, state.Panel); err != nil {
		return err
	}
	if err := w.WriteEraSummary(state.Paths.EraSummaryCSV, "recovery_rate", state.EraStats); err != nil {
		return err
	}
	if err := exporter.WriteEraSummaryTable(state.Paths.EraSummaryTable, "recovery_rate", state.EraStats); err != nil {
		return err
	}
	if err := w.WriteScenarios(state.Paths.ScenarioCSV, state.Scenarios); err != nil {
		return err
	}
	if err := w.WriteModelFits(state.Paths.ModelFitsCSV, state.Fits); err != nil {
		return err
	}
	if err := w.WritePredictions(state.Paths.PredictionsCSV, state.Fits, state.Samples); err != nil {
		return err
	}

	s.rows = len(state.Panel)
	return nil
}

// StoreStep persists the panel and fits to the scratch database.
type StoreStep struct {
	logger *slog.Logger
	rows   int
}

func NewStoreStep(logger *slog.Logger) *StoreStep { return &StoreStep{logger: logger} }

func (s *StoreStep) ID() string   { return "store" }
func (s *StoreStep) Name() string { return "Persist panel database" }
func (s *StoreStep) Rows() int    { return s.rows }

func (s *StoreStep) Validate(state *State) error {
	if len(state.Panel) == 0 {
		return fmt.Errorf("empty panel")
	}
	return nil
}

func (s *StoreStep) Execute(ctx context.Context, state *State) error {
	db, err := store.Open(state.Paths.PanelDB)
	if err != nil {
		return fmt.Errorf("open panel database: %w", err)
	}
	defer db.Close()

	if err := db.SavePanel(ctx, state.Panel); err != nil {
		return fmt.Errorf("save panel: %w", err)
	}
	if err := db.SaveFits(ctx, state.Fits); err != nil {
		return fmt.Errorf("save fits: %w", err)
	}

	s.rows = len(state.Panel)
	return nil
}
