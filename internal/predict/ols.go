package predict

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"fbpanel/internal/dataset"
)

// ols fits y = Xb by least squares over the given rows. The design
// matrix carries an intercept in column 0. Rank deficiency surfaces as
// an error so the caller can record the window as failed and move on.
func ols(rows []caseRow, k int) ([]float64, error) {
	n := len(rows)
	if n < k+1 {
		return nil, fmt.Errorf("underdetermined system: %d observations for %d parameters", n, k+1)
	}

	x := mat.NewDense(n, k+1, nil)
	y := mat.NewVecDense(n, nil)
	for i, r := range rows {
		x.Set(i, 0, 1)
		for j, v := range r.x {
			x.Set(i, j+1, v)
		}
		y.SetVec(i, r.y)
	}

	var qr mat.QR
	qr.Factorize(x)
	beta := mat.NewVecDense(k+1, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil, fmt.Errorf("singular design matrix: %w", err)
	}

	out := make([]float64, k+1)
	copy(out, beta.RawVector().Data)
	return out, nil
}

// predict evaluates the fitted line for one row of regressors, missing
// when any regressor is missing.
func predictRow(beta []float64, x []float64) float64 {
	v := beta[0]
	for j, xv := range x {
		if dataset.IsMissing(xv) {
			return dataset.Missing()
		}
		v += beta[j+1] * xv
	}
	return v
}

// hacCovariance computes a Driscoll-Kraay style covariance for the
// full-sample fit: cross-sectional score sums per year, a Bartlett
// kernel over maxLag serial lags, and the usual sandwich around
// (X'X)^-1. The lag truncation is a design constant, not data-driven.
func hacCovariance(rows []caseRow, beta []float64, maxLag int) (*mat.SymDense, error) {
	k := len(beta)
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("no observations")
	}

	// Score sums h_t = sum_i x_it * e_it per year, years ascending.
	scores := make(map[int][]float64)
	years := make([]int, 0)
	xtx := mat.NewSymDense(k, nil)

	for _, r := range rows {
		xi := make([]float64, k)
		xi[0] = 1
		copy(xi[1:], r.x)

		resid := r.y - predictRow(beta, r.x)

		h, ok := scores[r.year]
		if !ok {
			h = make([]float64, k)
			scores[r.year] = h
			years = append(years, r.year)
		}
		for j := 0; j < k; j++ {
			h[j] += xi[j] * resid
			for l := j; l < k; l++ {
				xtx.SetSym(j, l, xtx.At(j, l)+xi[j]*xi[l])
			}
		}
	}
	sort.Ints(years)

	// S = Gamma_0 + sum_l w_l (Gamma_l + Gamma_l'), Bartlett weights.
	s := mat.NewDense(k, k, nil)
	for lag := 0; lag <= maxLag; lag++ {
		w := 1 - float64(lag)/float64(maxLag+1)
		for ti := lag; ti < len(years); ti++ {
			ht := scores[years[ti]]
			hl := scores[years[ti-lag]]
			for j := 0; j < k; j++ {
				for l := 0; l < k; l++ {
					g := w * ht[j] * hl[l]
					if lag == 0 {
						if l >= j {
							s.Set(j, l, s.At(j, l)+g)
						}
						if l > j {
							s.Set(l, j, s.At(l, j)+g)
						}
					} else {
						s.Set(j, l, s.At(j, l)+g)
						s.Set(l, j, s.At(l, j)+g)
					}
				}
			}
		}
	}

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(xtx); err != nil {
		return nil, fmt.Errorf("X'X not invertible: %w", err)
	}

	var tmp, cov mat.Dense
	tmp.Mul(&xtxInv, s)
	cov.Mul(&tmp, &xtxInv)

	out := mat.NewSymDense(k, nil)
	for j := 0; j < k; j++ {
		for l := j; l < k; l++ {
			out.SetSym(j, l, (cov.At(j, l)+cov.At(l, j))/2)
		}
	}
	return out, nil
}
