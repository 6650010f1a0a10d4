// Package predict fits linear models on expanding training windows and
// scores their discrimination. For each specification the predictor
// walks candidate end-years forward, producing one-step-ahead
// out-of-sample predictions, plus a single full-sample fit whose fitted
// values are the in-sample predictions and whose covariance uses a
// heteroskedasticity-and-autocorrelation-robust estimator.
package predict

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"fbpanel/internal/dataset"
	pipeerr "fbpanel/internal/errors"
)

// DefaultHACLags is the fixed lag truncation of the robust covariance.
const DefaultHACLags = 3

// Specification names one model: a left-hand variable regressed on a
// right-hand variable set.
type Specification struct {
	Name       string
	Outcome    string
	Regressors []string
}

// Sample is the immutable data slice one specification is fit on. Rows
// align across Years, Y, and X; X rows hold the regressors without an
// intercept.
type Sample struct {
	Years []int
	Y     []float64
	X     [][]float64
}

// Len returns the number of rows.
func (s Sample) Len() int { return len(s.Y) }

// Config fixes the sample period and window discipline.
type Config struct {
	StartYear  int
	MaxEndYear int
	MinWindow  int
	HACLags    int

	// MaxConcurrency bounds the parallel specification fits in RunAll.
	MaxConcurrency int
}

// ModelFit is the immutable result of one (specification, sample
// period) pair. Prediction slices align with the input sample's rows;
// positions with no prediction hold the missing sentinel.
type ModelFit struct {
	Spec       Specification
	StartYear  int
	EndYear    int
	Coef       []float64 // intercept first
	Covariance *mat.SymDense

	InSample    []float64
	OutOfSample []float64

	AUCInSample    float64
	AUCOutOfSample float64

	// FailedEndYears lists windows whose fit was caught and skipped.
	FailedEndYears []int
}

// windowState tracks the expanding-window discipline: Collecting while
// the window is below the minimum size, Fitted once models are being
// produced, Exhausted when no candidate end-years remain.
type windowState int

const (
	stateCollecting windowState = iota
	stateFitted
	stateExhausted
)

// Predictor runs expanding-window fits.
type Predictor struct {
	cfg      Config
	logger   *slog.Logger
	warnings *pipeerr.WarningCounter
}

// NewPredictor creates a predictor. Nil logger and warning counter fall
// back to defaults.
func NewPredictor(cfg Config, logger *slog.Logger, warnings *pipeerr.WarningCounter) *Predictor {
	if logger == nil {
		logger = slog.Default()
	}
	if warnings == nil {
		warnings = pipeerr.NewWarningCounter()
	}
	if cfg.HACLags <= 0 {
		cfg.HACLags = DefaultHACLags
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	return &Predictor{cfg: cfg, logger: logger, warnings: warnings}
}

// caseRow is one complete case: outcome and all regressors non-missing.
type caseRow struct {
	idx  int
	year int
	y    float64
	x    []float64
}

// completeCases extracts rows usable for fitting within [start, end].
func completeCases(s Sample, start, end int) []caseRow {
	var rows []caseRow
	for i := 0; i < s.Len(); i++ {
		if s.Years[i] < start || s.Years[i] > end {
			continue
		}
		if dataset.IsMissing(s.Y[i]) {
			continue
		}
		ok := true
		for _, v := range s.X[i] {
			if dataset.IsMissing(v) {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, caseRow{idx: i, year: s.Years[i], y: s.Y[i], x: s.X[i]})
		}
	}
	return rows
}

// Run fits one specification: the expanding-window walk-forward pass
// and the full-sample fit. A fit failure at one end-year leaves that
// year's predictions missing and continues; only a failing full-sample
// fit returns an error.
func (p *Predictor) Run(ctx context.Context, spec Specification, sample Sample) (*ModelFit, error) {
	k := 0
	if sample.Len() > 0 {
		k = len(sample.X[0])
	}

	fit := &ModelFit{
		Spec:        spec,
		StartYear:   p.cfg.StartYear,
		EndYear:     p.cfg.MaxEndYear,
		InSample:    missingVector(sample.Len()),
		OutOfSample: missingVector(sample.Len()),
	}

	// Walk-forward pass: for each end-year E with a window of at least
	// MinWindow years, fit on [start, E] and predict year E+1 only.
	state := stateCollecting
	for end := p.cfg.StartYear; end <= p.cfg.MaxEndYear; end++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if end-p.cfg.StartYear+1 < p.cfg.MinWindow {
			continue // still Collecting
		}

		beta, err := ols(completeCases(sample, p.cfg.StartYear, end), k)
		if err != nil {
			fit.FailedEndYears = append(fit.FailedEndYears, end)
			p.warnings.Add(pipeerr.WarnFitFailure, 1)
			p.logger.WarnContext(ctx, "window fit failed, predictions left missing",
				slog.String("spec", spec.Name),
				slog.Int("end_year", end),
				slog.String("error", err.Error()))
			continue
		}
		state = stateFitted

		for i := 0; i < sample.Len(); i++ {
			if sample.Years[i] == end+1 {
				fit.OutOfSample[i] = predictRow(beta, sample.X[i])
			}
		}
	}
	if state == stateCollecting {
		p.logger.WarnContext(ctx, "no window reached the minimum size, all out-of-sample predictions missing",
			slog.String("spec", spec.Name),
			slog.Int("min_window", p.cfg.MinWindow))
	}
	state = stateExhausted

	// Full-sample fit: coefficients, robust covariance, and in-sample
	// predictions over the whole [start, maxEnd] window.
	fullRows := completeCases(sample, p.cfg.StartYear, p.cfg.MaxEndYear)
	beta, err := ols(fullRows, k)
	if err != nil {
		return nil, &pipeerr.FitError{Spec: spec.Name, EndYear: p.cfg.MaxEndYear, Err: err}
	}
	fit.Coef = beta

	cov, err := hacCovariance(fullRows, beta, p.cfg.HACLags)
	if err != nil {
		return nil, &pipeerr.FitError{Spec: spec.Name, EndYear: p.cfg.MaxEndYear, Err: err}
	}
	fit.Covariance = cov

	for i := 0; i < sample.Len(); i++ {
		if sample.Years[i] >= p.cfg.StartYear && sample.Years[i] <= p.cfg.MaxEndYear {
			fit.InSample[i] = predictRow(beta, sample.X[i])
		}
	}

	fit.AUCInSample = AUC(fit.InSample, sample.Y)
	fit.AUCOutOfSample = AUC(fit.OutOfSample, sample.Y)
	if dataset.IsMissing(fit.AUCInSample) || dataset.IsMissing(fit.AUCOutOfSample) {
		p.warnings.Add(pipeerr.WarnInsufficientData, 1)
	}

	p.logger.InfoContext(ctx, "specification fitted",
		slog.String("spec", spec.Name),
		slog.Int("complete_cases", len(fullRows)),
		slog.Int("failed_windows", len(fit.FailedEndYears)),
		slog.Float64("auc_in_sample", fit.AUCInSample),
		slog.Float64("auc_out_of_sample", fit.AUCOutOfSample))

	return fit, nil
}

// RunAll fits independent specifications concurrently. Each job reads
// only its own sample and writes to its own output slot. A
// specification whose full-sample fit fails yields a nil slot and a
// fit-failure warning; it never aborts the other specifications.
func (p *Predictor) RunAll(ctx context.Context, specs []Specification, samples []Sample) ([]*ModelFit, error) {
	if len(specs) != len(samples) {
		panic("predict: specs and samples differ in length")
	}

	fits := make([]*ModelFit, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.MaxConcurrency)

	for i := range specs {
		i := i
		g.Go(func() error {
			fit, err := p.Run(gctx, specs[i], samples[i])
			if err != nil {
				var fitErr *pipeerr.FitError
				if errors.As(err, &fitErr) {
					p.warnings.Add(pipeerr.WarnFitFailure, 1)
					p.logger.WarnContext(gctx, "specification skipped",
						slog.String("spec", specs[i].Name),
						slog.String("error", err.Error()))
					return nil
				}
				return err
			}
			fits[i] = fit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fits, nil
}

func missingVector(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = dataset.Missing()
	}
	return v
}
