package derive

import (
	"sort"

	"fbpanel/internal/dataset"
)

// Quintile bucketing convention: non-missing values receive average
// (midrank) ranks, and value v with rank r among n non-missing values
// falls in the smallest bucket q in 1..5 with r <= q*n/5. Tied values
// share a rank and therefore always share a bucket. For five distinct
// values this yields the strict 1-5 permutation of their sort order.

// MissingBucket marks values with no bucket. It is never a valid
// quintile; missing inputs are not coerced into bucket 1.
const MissingBucket = 0

// Quintiles assigns buckets 1-5 to the values of one group. Missing
// values receive MissingBucket.
func Quintiles(values []float64) []int {
	out := make([]int, len(values))

	idx := make([]int, 0, len(values))
	for i, v := range values {
		if !dataset.IsMissing(v) {
			idx = append(idx, i)
		}
	}
	n := len(idx)
	if n == 0 {
		return out
	}

	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	// Average ranks doubled to stay in integer arithmetic (midranks are
	// halves). ranks2[i] = 2 * rank of values[idx[i]].
	ranks2 := make([]int, n)
	for i := 0; i < n; {
		j := i
		for j < n && values[idx[j]] == values[idx[i]] {
			j++
		}
		r2 := (i + 1) + j // 2 * average of ranks i+1..j
		for k := i; k < j; k++ {
			ranks2[k] = r2
		}
		i = j
	}

	for i, pos := range idx {
		out[pos] = bucketForRank(ranks2[i], n)
	}
	return out
}

// bucketForRank finds the smallest q with rank <= q*n/5, comparing
// 5*(2*rank) <= q*(2*n) to avoid floating-point boundary error.
func bucketForRank(rank2, n int) int {
	for q := 1; q < 5; q++ {
		if 5*rank2 <= q*2*n {
			return q
		}
	}
	return 5
}

// QuintilesBy buckets values within cross-sections defined by the
// grouping key (for example the calendar year), not within the whole
// slice. Missing values receive MissingBucket in every group.
func QuintilesBy(values []float64, group []int) []int {
	if len(values) != len(group) {
		panic("derive: quintile grouping key differs in length")
	}
	members := make(map[int][]int)
	for i, g := range group {
		members[g] = append(members[g], i)
	}

	out := make([]int, len(values))
	for _, idx := range members {
		vals := make([]float64, len(idx))
		for i, pos := range idx {
			vals[i] = values[pos]
		}
		buckets := Quintiles(vals)
		for i, pos := range idx {
			out[pos] = buckets[i]
		}
	}
	return out
}
