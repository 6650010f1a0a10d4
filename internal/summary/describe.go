// Package summary produces grouped descriptive statistics and the
// insolvency-share scenario tables. Every statistic ignores missing
// values independently, so two statistics of the same group can have
// different denominators.
package summary

import (
	"math"
	"sort"

	"fbpanel/internal/dataset"
)

// Percentiles reported by Describe, in order.
var Percentiles = []int{1, 10, 25, 75, 90, 99}

// Stats are the descriptive statistics of one variable within one
// group. Undefined statistics (empty group, single observation for SD)
// hold the missing sentinel.
type Stats struct {
	N    int
	Mean float64
	SD   float64
	P1   float64
	P10  float64
	P25  float64
	P75  float64
	P90  float64
	P99  float64
}

// Describe computes missing-aware descriptive statistics.
func Describe(values []float64) Stats {
	var present []float64
	for _, v := range values {
		if !dataset.IsMissing(v) {
			present = append(present, v)
		}
	}

	s := Stats{
		N:    len(present),
		Mean: dataset.Missing(),
		SD:   dataset.Missing(),
		P1:   dataset.Missing(),
		P10:  dataset.Missing(),
		P25:  dataset.Missing(),
		P75:  dataset.Missing(),
		P90:  dataset.Missing(),
		P99:  dataset.Missing(),
	}
	if len(present) == 0 {
		return s
	}

	sum := 0.0
	for _, v := range present {
		sum += v
	}
	s.Mean = sum / float64(len(present))

	if len(present) > 1 {
		ss := 0.0
		for _, v := range present {
			d := v - s.Mean
			ss += d * d
		}
		s.SD = math.Sqrt(ss / float64(len(present)-1))
	}

	sort.Float64s(present)
	s.P1 = percentile(present, 1)
	s.P10 = percentile(present, 10)
	s.P25 = percentile(present, 25)
	s.P75 = percentile(present, 75)
	s.P90 = percentile(present, 90)
	s.P99 = percentile(present, 99)
	return s
}

// percentile follows the legacy statistical-package convention: with
// h = p/100 * n, the percentile is the average of the h-th and (h+1)-th
// order statistics when h is integral, and the ceil(h)-th otherwise.
func percentile(sorted []float64, p int) float64 {
	n := len(sorted)
	if n == 0 {
		return dataset.Missing()
	}
	h := float64(p) / 100 * float64(n)
	i := int(math.Ceil(h))
	if i < 1 {
		i = 1
	}
	if i > n {
		i = n
	}
	if h == math.Trunc(h) && i < n {
		return (sorted[i-1] + sorted[i]) / 2
	}
	return sorted[i-1]
}

// GroupStats pairs a group label with the statistics of one variable.
type GroupStats struct {
	Group string
	Stats Stats
}

// DescribeBy computes Describe per group, sorted by group label.
func DescribeBy(values []float64, groups []string) []GroupStats {
	if len(values) != len(groups) {
		panic("summary: grouping key differs in length")
	}

	byGroup := make(map[string][]float64)
	for i, g := range groups {
		byGroup[g] = append(byGroup[g], values[i])
	}

	labels := make([]string, 0, len(byGroup))
	for g := range byGroup {
		labels = append(labels, g)
	}
	sort.Strings(labels)

	out := make([]GroupStats, 0, len(labels))
	for _, g := range labels {
		out = append(out, GroupStats{Group: g, Stats: Describe(byGroup[g])})
	}
	return out
}

// DescribeByEra groups panel rows by era label and describes the values
// extracted by get. Rows outside every era interval are excluded, not
// coerced into a default bucket.
func DescribeByEra(rows []dataset.PanelRow, eras dataset.EraTable, get func(dataset.PanelRow) float64) []GroupStats {
	var values []float64
	var groups []string
	for _, r := range rows {
		era, ok := eras.Classify(r.Year)
		if !ok {
			continue
		}
		values = append(values, get(r))
		groups = append(groups, era.Label)
	}
	return DescribeBy(values, groups)
}
