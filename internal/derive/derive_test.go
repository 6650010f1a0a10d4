package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fbpanel/internal/dataset"
)

func na() float64 { return dataset.Missing() }

func TestLag(t *testing.T) {
	s := []float64{1, 2, 3, 4, 5}

	got := Lag(s, 2)
	assert.True(t, dataset.IsMissing(got[0]))
	assert.True(t, dataset.IsMissing(got[1]))
	assert.Equal(t, []float64{1, 2, 3}, got[2:])
}

func TestLagComposability(t *testing.T) {
	// Applying lag(1) twice equals lag(2) wherever both are defined.
	s := []float64{10, 20, na(), 40, 50, 60}

	twice := Lag(Lag(s, 1), 1)
	once := Lag(s, 2)

	for i := range s {
		if dataset.IsMissing(once[i]) {
			assert.True(t, dataset.IsMissing(twice[i]), "index %d", i)
			continue
		}
		assert.Equal(t, once[i], twice[i], "index %d", i)
	}
}

func TestGrowthMissingPropagation(t *testing.T) {
	s := []float64{100, 0, 110, na(), 120, 90}

	got := Growth(s, 1)

	assert.True(t, dataset.IsMissing(got[0]), "no prior period")
	assert.InDelta(t, -1.0, got[1], 1e-12)
	assert.True(t, dataset.IsMissing(got[2]), "zero denominator")
	assert.True(t, dataset.IsMissing(got[3]), "missing numerator")
	assert.True(t, dataset.IsMissing(got[4]), "missing denominator")
	assert.InDelta(t, -0.25, got[5], 1e-12)
}

func TestGrowthMultiPeriod(t *testing.T) {
	s := []float64{100, 110, 121, 133.1}
	got := Growth(s, 3)
	assert.InDelta(t, 0.331, got[3], 1e-9)
}

func TestRatio(t *testing.T) {
	a := []float64{10, 20, na(), 40}
	b := []float64{2, 0, 5, na()}

	got := Ratio(a, b)

	assert.Equal(t, 5.0, got[0])
	assert.True(t, dataset.IsMissing(got[1]), "zero denominator")
	assert.True(t, dataset.IsMissing(got[2]))
	assert.True(t, dataset.IsMissing(got[3]))
}

func TestQuintilesDistinctFive(t *testing.T) {
	// Five distinct values must map to the strict 1-5 permutation.
	values := []float64{30, 10, 50, 20, 40}
	got := Quintiles(values)
	assert.Equal(t, []int{3, 1, 5, 2, 4}, got)
}

func TestQuintilesMissingBucket(t *testing.T) {
	values := []float64{1, na(), 3}
	got := Quintiles(values)
	assert.Equal(t, MissingBucket, got[1])
	assert.NotEqual(t, MissingBucket, got[0])
	assert.NotEqual(t, MissingBucket, got[2])
}

func TestQuintilesTiesShareBucket(t *testing.T) {
	values := []float64{5, 5, 5, 5, 5}
	got := Quintiles(values)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, got[0], got[i])
	}
}

func TestQuintilesEqualSplit(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	got := Quintiles(values)
	assert.Equal(t, []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5}, got)
}

func TestQuintilesBy(t *testing.T) {
	// Two cross-sections bucketed independently.
	values := []float64{1, 2, 3, 4, 5, 100, 200, 300, 400, 500}
	groups := []int{1900, 1900, 1900, 1900, 1900, 1901, 1901, 1901, 1901, 1901}

	got := QuintilesBy(values, groups)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, got[:5])
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got[5:])
}
