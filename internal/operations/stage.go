// Package operations sequences the pipeline stages. Each stage fully
// consumes its input and materializes its output on the shared state
// before the next stage begins; a fatal stage error aborts the run.
package operations

import (
	"context"
	"sync"
	"time"
)

// Step is a single pipeline stage.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() string

	// Name returns the human-readable name for this step.
	Name() string

	// Validate checks the step can run against the current state.
	Validate(state *State) error

	// Execute runs the step, reading and writing the shared state.
	Execute(ctx context.Context, state *State) error
}

// StepStatus is the lifecycle status of a step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState is the runtime record of one step's execution.
type StepState struct {
	mu        sync.RWMutex
	ID        string
	Name      string
	Status    StepStatus
	StartTime *time.Time
	EndTime   *time.Time
	Message   string
	Err       error

	// Rows is the number of output rows the step materialized, for the
	// run summary.
	Rows int
}

// NewStepState creates a pending step state.
func NewStepState(id, name string) *StepState {
	return &StepState{ID: id, Name: name, Status: StepStatusPending}
}

// Start marks the step active.
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the step completed with its output row count.
func (s *StepState) Complete(rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.Rows = rows
}

// Fail marks the step failed.
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Err = err
}

// Skip marks the step skipped with a reason.
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// Duration returns how long the step ran.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}
