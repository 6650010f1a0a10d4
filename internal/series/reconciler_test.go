package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fbpanel/internal/dataset"
	pipeerr "fbpanel/internal/errors"
)

func seriesFrom(points map[int]float64) *dataset.AnnualSeries {
	s := dataset.NewAnnualSeries()
	for y, v := range points {
		s.Set(y, v)
	}
	return s
}

func TestSpliceRoundTripAtCalibrationPoint(t *testing.T) {
	modern := seriesFrom(map[int]float64{1947: 250, 1948: 260})
	historical := seriesFrom(map[int]float64{1900: 40, 1947: 100})

	result, err := NewReconciler(nil).Splice(modern, historical, 1947, 1947)
	require.NoError(t, err)

	assert.Equal(t, 1947, result.CalibrationYear)
	assert.False(t, result.FallbackUsed)
	assert.InDelta(t, 2.5, result.Ratio, 1e-12)

	// The merged series equals the modern series exactly at the
	// calibration point.
	assert.Equal(t, 250.0, result.Merged.Value(1947))
	assert.Equal(t, 260.0, result.Merged.Value(1948))

	// Pre-cutover values are the historical series rescaled onto the
	// modern level: no jump at the splice.
	assert.InDelta(t, 100.0, result.Merged.Value(1900), 1e-12)
}

func TestSpliceFallbackToEarliestCommonYear(t *testing.T) {
	// The designated overlap year is missing in the modern series.
	modern := seriesFrom(map[int]float64{1950: 300, 1955: 330})
	historical := seriesFrom(map[int]float64{1940: 80, 1950: 150, 1955: 160})

	result, err := NewReconciler(nil).Splice(modern, historical, 1947, 1947)
	require.NoError(t, err)

	assert.True(t, result.FallbackUsed)
	assert.Equal(t, 1950, result.CalibrationYear)
	assert.InDelta(t, 2.0, result.Ratio, 1e-12)
	assert.InDelta(t, 160.0, result.Merged.Value(1940), 1e-12)
}

func TestSpliceNoOverlap(t *testing.T) {
	modern := seriesFrom(map[int]float64{1950: 300})
	historical := seriesFrom(map[int]float64{1900: 40})

	_, err := NewReconciler(nil).Splice(modern, historical, 1947, 1947)

	var overlapErr *pipeerr.NoOverlapError
	require.ErrorAs(t, err, &overlapErr)
}

func TestSpliceZeroHistoricalAtOverlapFallsBack(t *testing.T) {
	// A zero historical value makes the ratio non-finite; calibration
	// must fall back, not divide by zero.
	modern := seriesFrom(map[int]float64{1947: 250, 1950: 300})
	historical := seriesFrom(map[int]float64{1947: 0, 1950: 150})

	result, err := NewReconciler(nil).Splice(modern, historical, 1947, 1947)
	require.NoError(t, err)

	assert.True(t, result.FallbackUsed)
	assert.Equal(t, 1950, result.CalibrationYear)
}

func TestSpliceGapsStayMissing(t *testing.T) {
	modern := seriesFrom(map[int]float64{1947: 250, 1950: 300})
	historical := seriesFrom(map[int]float64{1900: 40, 1947: 100, 1948: 105})

	result, err := NewReconciler(nil).Splice(modern, historical, 1947, 1947)
	require.NoError(t, err)

	// 1948 is a post-cutover gap in the modern series, covered by the
	// rescaled historical value.
	assert.InDelta(t, 105.0*2.5, result.Merged.Value(1948), 1e-12)

	// 1949 is missing in both, and stays missing, never zero.
	assert.True(t, dataset.IsMissing(result.Merged.Value(1949)))
}
