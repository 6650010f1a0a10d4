package predict

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fbpanel/internal/dataset"
)

// linearSample builds one row per year with y = 2 + 3x and x = year-2000.
func linearSample(firstYear, lastYear int) Sample {
	var s Sample
	for y := firstYear; y <= lastYear; y++ {
		x := float64(y - 2000)
		s.Years = append(s.Years, y)
		s.X = append(s.X, []float64{x})
		s.Y = append(s.Y, 2+3*x)
	}
	return s
}

func TestRunWindowGating(t *testing.T) {
	cfg := Config{StartYear: 2000, MaxEndYear: 2010, MinWindow: 10}
	p := NewPredictor(cfg, nil, nil)

	sample := linearSample(2000, 2011)
	fit, err := p.Run(context.Background(), Specification{Name: "linear"}, sample)
	require.NoError(t, err)

	// No window reaches the minimum size before end-year 2009, so no
	// out-of-sample prediction exists for any year up to 2009.
	for i, y := range sample.Years {
		if y <= 2009 {
			assert.True(t, dataset.IsMissing(fit.OutOfSample[i]), "year %d", y)
		}
	}

	// The final window [2000, 2010] predicts 2011 one step ahead; the
	// noiseless sample recovers the prediction exactly.
	idx2011 := len(sample.Years) - 1
	require.Equal(t, 2011, sample.Years[idx2011])
	assert.InDelta(t, 2+3*11, fit.OutOfSample[idx2011], 1e-9)
	assert.Empty(t, fit.FailedEndYears)
}

func TestRunFullSampleCoefficients(t *testing.T) {
	cfg := Config{StartYear: 2000, MaxEndYear: 2010, MinWindow: 5}
	p := NewPredictor(cfg, nil, nil)

	fit, err := p.Run(context.Background(), Specification{Name: "linear"}, linearSample(2000, 2010))
	require.NoError(t, err)

	require.Len(t, fit.Coef, 2)
	assert.InDelta(t, 2.0, fit.Coef[0], 1e-9)
	assert.InDelta(t, 3.0, fit.Coef[1], 1e-9)
	require.NotNil(t, fit.Covariance)
	assert.Equal(t, 2, fit.Covariance.SymmetricDim())

	// Every in-sample year gets a fitted value.
	for i := range fit.InSample {
		assert.False(t, dataset.IsMissing(fit.InSample[i]))
	}
}

func TestRunSkipsIncompleteCases(t *testing.T) {
	cfg := Config{StartYear: 2000, MaxEndYear: 2010, MinWindow: 5}
	p := NewPredictor(cfg, nil, nil)

	sample := linearSample(2000, 2010)
	sample.Y[3] = dataset.Missing()
	sample.X[4][0] = dataset.Missing()

	fit, err := p.Run(context.Background(), Specification{Name: "linear"}, sample)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, fit.Coef[0], 1e-9)
	assert.InDelta(t, 3.0, fit.Coef[1], 1e-9)
}

func TestRunAllToleratesSingularSpec(t *testing.T) {
	cfg := Config{StartYear: 2000, MaxEndYear: 2010, MinWindow: 5, MaxConcurrency: 2}
	p := NewPredictor(cfg, nil, nil)

	good := linearSample(2000, 2010)

	// A constant regressor is collinear with the intercept, so the
	// full-sample fit fails. The failure must not abort the good spec.
	singular := linearSample(2000, 2010)
	for i := range singular.X {
		singular.X[i] = []float64{1}
	}

	specs := []Specification{{Name: "good"}, {Name: "singular"}}
	fits, err := p.RunAll(context.Background(), specs, []Sample{good, singular})
	require.NoError(t, err)
	require.Len(t, fits, 2)
	require.NotNil(t, fits[0])
	assert.InDelta(t, 3.0, fits[0].Coef[1], 1e-9)
	assert.Nil(t, fits[1])
}

func TestAUCPerfectSeparation(t *testing.T) {
	preds := []float64{0.1, 0.2, 0.8, 0.9}
	outcomes := []float64{0, 0, 1, 1}
	assert.Equal(t, 1.0, AUC(preds, outcomes))
}

func TestAUCConstantOutcomeIsMissing(t *testing.T) {
	preds := []float64{0.1, 0.2, 0.3}
	outcomes := []float64{1, 1, 1}
	assert.True(t, dataset.IsMissing(AUC(preds, outcomes)))
}

func TestAUCTiesHalfCredit(t *testing.T) {
	// All scores equal: every positive-negative comparison ties, so the
	// statistic sits at one half exactly.
	preds := []float64{0.5, 0.5, 0.5, 0.5}
	outcomes := []float64{0, 1, 0, 1}
	assert.InDelta(t, 0.5, AUC(preds, outcomes), 1e-12)
}

func TestAUCExcludesMissingRows(t *testing.T) {
	preds := []float64{0.9, dataset.Missing(), 0.1}
	outcomes := []float64{1, 0, 0}
	assert.Equal(t, 1.0, AUC(preds, outcomes))
}
