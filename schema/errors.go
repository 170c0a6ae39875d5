package schema

import "errors"

// Input-contract violations raised by the pipeline. They are never retried:
// the same input reproduces the same failure. Stages wrap them with context,
// so callers should match with errors.Is.
var (
	// ErrEmptySeries is returned when an operation needs at least one sample.
	ErrEmptySeries = errors.New("empty series")

	// ErrUnsortedTime is returned when timestamps are not ascending.
	ErrUnsortedTime = errors.New("series time is not ascending")

	// ErrTrimExceedsRange is returned when a trim would drop every sample.
	ErrTrimExceedsRange = errors.New("trim exceeds series range")

	// ErrMissingAlignmentSource is returned when rotation-based gravity
	// compensation is requested without an orientation series.
	ErrMissingAlignmentSource = errors.New("missing orientation series for alignment")
)
