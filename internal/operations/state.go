package operations

import (
	"fbpanel/internal/config"
	"fbpanel/internal/dataset"
	pipeerr "fbpanel/internal/errors"
	"fbpanel/internal/panel"
	"fbpanel/internal/predict"
	"fbpanel/internal/summary"
)

// State is the materialized hand-off between stages. Stages run
// sequentially; each writes the artifacts the next one reads. No two
// stages mutate the same field concurrently.
type State struct {
	Config   *config.Config
	Paths    *config.Paths
	Warnings *pipeerr.WarningCounter

	// Imported inputs.
	GDPModern     *dataset.AnnualSeries
	GNPHistorical *dataset.AnnualSeries
	BondYields    map[string]*dataset.AnnualSeries
	Observations  []panel.Observation
	Receiverships []dataset.ReceivershipRecord

	// Reconciled and merged artifacts.
	MacroSeries *dataset.AnnualSeries
	Panel       []dataset.PanelRow

	// Model artifacts.
	Specs   []predict.Specification
	Samples []predict.Sample
	Fits    []*predict.ModelFit

	// Summary artifacts.
	EraStats  []summary.GroupStats
	Scenarios []summary.ScenarioCell
}

// NewState creates the shared state for one run.
func NewState(cfg *config.Config, paths *config.Paths) *State {
	return &State{
		Config:   cfg,
		Paths:    paths,
		Warnings: pipeerr.NewWarningCounter(),
	}
}
