// Package series aligns overlapping macro estimates from different
// sources and eras onto one continuous annual series.
package series

import (
	"log/slog"

	"fbpanel/internal/dataset"
	pipeerr "fbpanel/internal/errors"
)

// Reconciler splices a modern series onto a historical one via a
// scale-calibration ratio computed at an overlap year.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler creates a reconciler. A nil logger falls back to the
// default slog logger.
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// SpliceResult is the merged series together with the calibration used
// to produce it.
type SpliceResult struct {
	Merged          *dataset.AnnualSeries
	Ratio           float64
	CalibrationYear int
	// FallbackUsed is true when the designated overlap year was unusable
	// and the earliest common year was used instead.
	FallbackUsed bool
}

// Splice merges two annual series: modern is authoritative for years at
// or after cutover, historical for earlier years. The calibration
// ratio modern[Y]/historical[Y] at the overlap year rescales the
// historical series onto the modern level, so the merged series equals
// the modern series exactly at the calibration year. Where the modern
// series has a post-cutover gap, the rescaled historical value still
// covers it. Years missing in both sources stay missing, never zero.
//
// If either value at the overlap year is missing or the ratio is
// non-finite, calibration falls back to the earliest year where both
// series have a usable value; with no such year the splice fails with a
// NoOverlapError.
func (r *Reconciler) Splice(modern, historical *dataset.AnnualSeries, cutover, overlapYear int) (*SpliceResult, error) {
	ratio, calYear, fellBack, err := r.calibrate(modern, historical, overlapYear)
	if err != nil {
		return nil, err
	}

	if fellBack {
		r.logger.Warn("overlap year unusable, calibrated at earliest common year",
			slog.Int("overlap_year", overlapYear),
			slog.Int("calibration_year", calYear))
	}
	r.logger.Info("spliced annual series",
		slog.Int("cutover", cutover),
		slog.Int("calibration_year", calYear),
		slog.Float64("ratio", ratio))

	merged := dataset.NewAnnualSeries()
	for _, y := range historical.Years() {
		if y < cutover || !modern.Has(y) {
			merged.Set(y, historical.Value(y)*ratio)
		}
	}
	for _, y := range modern.Years() {
		if y >= cutover {
			merged.Set(y, modern.Value(y))
		}
	}

	return &SpliceResult{
		Merged:          merged,
		Ratio:           ratio,
		CalibrationYear: calYear,
		FallbackUsed:    fellBack,
	}, nil
}

func (r *Reconciler) calibrate(modern, historical *dataset.AnnualSeries, overlapYear int) (ratio float64, calYear int, fellBack bool, err error) {
	if ratio, ok := spliceRatio(modern, historical, overlapYear); ok {
		return ratio, overlapYear, false, nil
	}

	// Earliest year where both series have a usable value.
	for _, y := range historical.Years() {
		if ratio, ok := spliceRatio(modern, historical, y); ok {
			return ratio, y, true, nil
		}
	}
	return 0, 0, false, &pipeerr.NoOverlapError{SeriesA: "modern", SeriesB: "historical"}
}

func spliceRatio(modern, historical *dataset.AnnualSeries, year int) (float64, bool) {
	a, b := modern.Value(year), historical.Value(year)
	if dataset.IsMissing(a) || dataset.IsMissing(b) {
		return 0, false
	}
	ratio := a / b
	if !dataset.Finite(ratio) {
		return 0, false
	}
	return ratio, true
}
