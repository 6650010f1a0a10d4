package errors

import "sync"

// WarningKind labels a recoverable data-quality condition.
type WarningKind string

const (
	// WarnReconciliation counts dates or identifiers that failed to
	// parse; the affected record is dropped or nulled.
	WarnReconciliation WarningKind = "reconciliation"

	// WarnInsufficientData counts statistics left undefined because of
	// fewer than two outcome classes or zero non-missing observations.
	WarnInsufficientData WarningKind = "insufficient_data"

	// WarnFitFailure counts model fits that failed for one window.
	WarnFitFailure WarningKind = "fit_failure"

	// WarnSkippedDerivation counts derivation steps skipped because a
	// declared upstream field was absent.
	WarnSkippedDerivation WarningKind = "skipped_derivation"
)

// WarningCounter accumulates recoverable warnings across a run for the
// run summary. Safe for concurrent use by parallel model fits.
type WarningCounter struct {
	mu     sync.Mutex
	counts map[WarningKind]int
}

// NewWarningCounter creates an empty counter.
func NewWarningCounter() *WarningCounter {
	return &WarningCounter{counts: make(map[WarningKind]int)}
}

// Add records n occurrences of kind.
func (c *WarningCounter) Add(kind WarningKind, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[kind] += n
}

// Count returns the occurrences recorded for kind.
func (c *WarningCounter) Count(kind WarningKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[kind]
}

// Snapshot returns a copy of all counts.
func (c *WarningCounter) Snapshot() map[WarningKind]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[WarningKind]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}
