package operations

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	pipeerr "fbpanel/internal/errors"
)

// Manager runs the registered steps in order against a shared state.
type Manager struct {
	steps  []Step
	states []*StepState
	logger *slog.Logger
}

// NewManager creates a manager. A nil logger falls back to
// slog.Default.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// Register appends a step to the execution order.
func (m *Manager) Register(step Step) {
	m.steps = append(m.steps, step)
	m.states = append(m.states, NewStepState(step.ID(), step.Name()))
}

// Run executes all steps sequentially. A validation failure skips the
// step as a stage decision; an execution error is fatal and aborts the
// remaining steps.
func (m *Manager) Run(ctx context.Context, state *State) error {
	for i, step := range m.steps {
		ss := m.states[i]

		if err := step.Validate(state); err != nil {
			if pipeerr.IsFatal(err) {
				ss.Fail(err)
				return fmt.Errorf("step %s: %w", step.ID(), err)
			}
			ss.Skip(err.Error())
			m.logger.WarnContext(ctx, "step skipped",
				slog.String("step", step.ID()),
				slog.String("reason", err.Error()))
			continue
		}

		ss.Start()
		m.logger.InfoContext(ctx, "step started", slog.String("step", step.ID()))

		if err := step.Execute(ctx, state); err != nil {
			ss.Fail(err)
			m.logger.ErrorContext(ctx, "step failed",
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			return fmt.Errorf("step %s: %w", step.ID(), err)
		}

		rows := 0
		if rc, ok := step.(RowCounter); ok {
			rows = rc.Rows()
		}
		ss.Complete(rows)
		m.logger.InfoContext(ctx, "step completed",
			slog.String("step", step.ID()),
			slog.Int("rows", rows),
			slog.Duration("duration", ss.Duration()))
	}
	return nil
}

// RowCounter is implemented by steps that can report how many output
// rows they materialized.
type RowCounter interface {
	Rows() int
}

// StepSummary is one step's entry in the run summary.
type StepSummary struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Status   StepStatus `json:"status"`
	Duration string     `json:"duration"`
	Rows     int        `json:"rows,omitempty"`
	Message  string     `json:"message,omitempty"`
}

// RunSummary is the per-run artifact recording what happened: step
// outcomes plus recoverable warning counts. Recoverable conditions
// never abort the run; they surface here.
type RunSummary struct {
	RunID      string                      `json:"run_id"`
	StartedAt  time.Time                   `json:"started_at"`
	FinishedAt time.Time                   `json:"finished_at"`
	Steps      []StepSummary               `json:"steps"`
	Warnings   map[pipeerr.WarningKind]int `json:"warnings"`
}

// Summary builds the run summary for the completed (or aborted) run.
func (m *Manager) Summary(runID string, startedAt time.Time, warnings *pipeerr.WarningCounter) RunSummary {
	steps := make([]StepSummary, len(m.states))
	for i, ss := range m.states {
		steps[i] = StepSummary{
			ID:       ss.ID,
			Name:     ss.Name,
			Status:   ss.Status,
			Duration: ss.Duration().String(),
			Rows:     ss.Rows,
			Message:  ss.Message,
		}
	}
	return RunSummary{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Steps:      steps,
		Warnings:   warnings.Snapshot(),
	}
}

// WriteSummary writes the run summary JSON atomically.
func WriteSummary(path string, s RunSummary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
