// Package derive provides the pure per-group metric functions: lags,
// growth rates, ratios, and within-group quintile bucketing. All
// functions propagate missing values and never fault on a zero
// denominator.
package derive

import "fbpanel/internal/dataset"

// Lag returns the series shifted k periods within one ordered group.
// The first k elements of the result are missing.
func Lag(series []float64, k int) []float64 {
	out := make([]float64, len(series))
	for i := range out {
		if i < k {
			out[i] = dataset.Missing()
			continue
		}
		out[i] = series[i-k]
	}
	return out
}

// Growth returns series[t]/series[t-k] - 1 within one ordered group.
// The result is missing when either operand is missing or the
// denominator is zero. Spans greater than one period use the same rule.
func Growth(series []float64, k int) []float64 {
	lagged := Lag(series, k)
	out := make([]float64, len(series))
	for i := range out {
		out[i] = grow(series[i], lagged[i])
	}
	return out
}

func grow(cur, prev float64) float64 {
	if dataset.IsMissing(cur) || dataset.IsMissing(prev) || prev == 0 {
		return dataset.Missing()
	}
	return cur/prev - 1
}

// Ratio returns a[i]/b[i] elementwise, missing when either operand is
// missing or b[i] is zero. Panics if the slices differ in length.
func Ratio(a, b []float64) []float64 {
	if len(a) != len(b) {
		panic("derive: ratio operands differ in length")
	}
	out := make([]float64, len(a))
	for i := range out {
		if dataset.IsMissing(a[i]) || dataset.IsMissing(b[i]) || b[i] == 0 {
			out[i] = dataset.Missing()
			continue
		}
		out[i] = a[i] / b[i]
	}
	return out
}
