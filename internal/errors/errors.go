// Package errors defines the pipeline error taxonomy.
//
// Fatal errors (MissingSourceError, unrecovered SchemaMismatchError)
// abort the run with a descriptive message naming the artifact and the
// expected path. Everything else is recovered locally and surfaced as
// warning counts in the run summary, so a single malformed record never
// aborts a multi-decade batch job.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// MissingSourceError indicates a required input artifact is absent or
// unreadable at the expected path. Always fatal.
type MissingSourceError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("missing source %q: expected at %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *MissingSourceError) Unwrap() error { return e.Err }

// NewMissingSource creates a MissingSourceError for the named artifact.
func NewMissingSource(artifact, path string, err error) *MissingSourceError {
	return &MissingSourceError{Artifact: artifact, Path: path, Err: err}
}

// SchemaMismatchError indicates expected columns were absent from an
// input. Fatal for the stage unless the source declares a documented
// fallback schema.
type SchemaMismatchError struct {
	Source  string
	Version int
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %q (mapping v%d): no accepted header for %s",
		e.Source, e.Version, strings.Join(e.Missing, ", "))
}

// NoOverlapError indicates two series to be spliced share no year where
// both have a usable value.
type NoOverlapError struct {
	SeriesA string
	SeriesB string
}

func (e *NoOverlapError) Error() string {
	return fmt.Sprintf("no overlap year with usable values in both %q and %q", e.SeriesA, e.SeriesB)
}

// FitError indicates a model fit failed for one (specification,
// end-year) pair. Never fatal: the pair's predictions are recorded as
// missing and the loop continues.
type FitError struct {
	Spec    string
	EndYear int
	Err     error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("fit %q failed for end year %d: %v", e.Spec, e.EndYear, e.Err)
}

func (e *FitError) Unwrap() error { return e.Err }

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool {
	var missing *MissingSourceError
	if errors.As(err, &missing) {
		return true
	}
	var schema *SchemaMismatchError
	return errors.As(err, &schema)
}
