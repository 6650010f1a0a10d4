package dataset

import "math"

// Missing values are represented as IEEE NaN throughout the pipeline.
// Every statistic is missing-aware: a missing operand propagates, and a
// missing value is never coerced to zero.

// Missing returns the missing-value sentinel.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing-value sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Finite reports whether v is present and finite (not missing, not Inf).
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
