package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for all pipeline file paths,
// resolved once at process start. It is immutable by convention: stages
// receive it as a parameter and never mutate it.
type Paths struct {
	SourceDir  string // raw inputs, read-only
	ScratchDir string // intermediate artifacts, safe to delete
	CleanDir   string // reconciled clean data
	OutputDir  string // tables and model-fit artifacts

	// Well-known artifacts.
	MacroSeriesCSV  string
	PanelCSV        string
	PanelDB         string
	RunSummaryJSON  string
	EraSummaryCSV   string
	ScenarioCSV     string
	ModelFitsCSV    string
	PredictionsCSV  string
	EraSummaryTable string
}

// NewPaths resolves the directory roots of cfg against the working
// directory and derives the well-known artifact paths.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	abs := func(p string) (string, error) {
		if filepath.IsAbs(p) {
			return p, nil
		}
		a, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolve path %s: %w", p, err)
		}
		return a, nil
	}

	source, err := abs(cfg.SourceDir)
	if err != nil {
		return nil, err
	}
	scratch, err := abs(cfg.ScratchDir)
	if err != nil {
		return nil, err
	}
	clean, err := abs(cfg.CleanDir)
	if err != nil {
		return nil, err
	}
	output, err := abs(cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	return &Paths{
		SourceDir:  source,
		ScratchDir: scratch,
		CleanDir:   clean,
		OutputDir:  output,

		MacroSeriesCSV:  filepath.Join(clean, "macro_annual.csv"),
		PanelCSV:        filepath.Join(clean, "failure_panel.csv"),
		PanelDB:         filepath.Join(scratch, "panel.db"),
		RunSummaryJSON:  filepath.Join(output, "run_summary.json"),
		EraSummaryCSV:   filepath.Join(output, "era_summary.csv"),
		ScenarioCSV:     filepath.Join(output, "insolvency_scenarios.csv"),
		ModelFitsCSV:    filepath.Join(output, "model_fits.csv"),
		PredictionsCSV:  filepath.Join(output, "predictions.csv"),
		EraSummaryTable: filepath.Join(output, "era_summary.txt"),
	}, nil
}

// EnsureDirectories creates the writable directory roots. The source
// directory is deliberately excluded: its absence is a fatal
// missing-source condition, not something to paper over.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ScratchDir, p.CleanDir, p.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// SourcePath returns the path of a raw input file.
func (p *Paths) SourcePath(filename string) string {
	return filepath.Join(p.SourceDir, filename)
}

// ScratchPath returns the path of an intermediate artifact.
func (p *Paths) ScratchPath(filename string) string {
	return filepath.Join(p.ScratchDir, filename)
}

// OutputPath returns the path of an exported artifact.
func (p *Paths) OutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// FileExists reports whether a file exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
