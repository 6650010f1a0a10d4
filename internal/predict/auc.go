package predict

import (
	"sort"

	"fbpanel/internal/dataset"
)

// AUC is the rank-concordance statistic: the probability a random
// positive is scored above a random negative, with ties counted as
// half credit. Rows where either the prediction or the outcome is
// missing are excluded first. When the restricted outcome has fewer
// than two distinct classes the statistic is undefined and the missing
// sentinel is returned, never zero.
func AUC(predictions, outcomes []float64) float64 {
	if len(predictions) != len(outcomes) {
		panic("predict: AUC operands differ in length")
	}

	type pair struct {
		score float64
		pos   bool
	}
	var pairs []pair
	for i := range predictions {
		if dataset.IsMissing(predictions[i]) || dataset.IsMissing(outcomes[i]) {
			continue
		}
		pairs = append(pairs, pair{score: predictions[i], pos: outcomes[i] != 0})
	}

	nPos, nNeg := 0, 0
	for _, p := range pairs {
		if p.pos {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return dataset.Missing()
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	// Midranks over the pooled scores; Mann-Whitney U from the positive
	// rank sum gives half credit to ties automatically.
	rankSumPos := 0.0
	for i := 0; i < len(pairs); {
		j := i
		for j < len(pairs) && pairs[j].score == pairs[i].score {
			j++
		}
		midrank := float64(i+j+1) / 2 // average of ranks i+1..j
		for k := i; k < j; k++ {
			if pairs[k].pos {
				rankSumPos += midrank
			}
		}
		i = j
	}

	u := rankSumPos - float64(nPos)*float64(nPos+1)/2
	return u / (float64(nPos) * float64(nNeg))
}
