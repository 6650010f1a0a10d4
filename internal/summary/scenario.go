package summary

import "fbpanel/internal/dataset"

// Insolvency-share scenario tables: for each (rho, v) cell of the
// parameter grid, a record is deeply insolvent when its solvency ratio
// is strictly below the threshold (1000-rho)/(1000+v). The share is the
// missing-aware mean of the indicator: a missing solvency ratio yields
// a missing indicator, which drops out of the numerator and the
// denominator, matching the legacy averaging convention exactly.

// ScenarioCell is one (rho, v) grid cell.
type ScenarioCell struct {
	Rho       float64
	V         float64
	Threshold float64
	Share     float64
	N         int
}

// Threshold computes the deep-insolvency cutoff for one (rho, v) pair.
func Threshold(rho, v float64) float64 {
	return (1000 - rho) / (1000 + v)
}

// InsolvencyShares evaluates the scenario grid over the solvency
// ratios. Cells with zero non-missing observations report a missing
// share.
func InsolvencyShares(solvency []float64, rhos, vs []float64) []ScenarioCell {
	cells := make([]ScenarioCell, 0, len(rhos)*len(vs))
	for _, rho := range rhos {
		for _, v := range vs {
			t := Threshold(rho, v)

			sum, n := 0.0, 0
			for _, s := range solvency {
				if dataset.IsMissing(s) {
					continue
				}
				if s < t {
					sum++
				}
				n++
			}

			share := dataset.Missing()
			if n > 0 {
				share = sum / float64(n)
			}
			cells = append(cells, ScenarioCell{Rho: rho, V: v, Threshold: t, Share: share, N: n})
		}
	}
	return cells
}
