package tzrule

import "errors"

// Sentinel errors identifying the error kinds spec.md §7 names by surface
// semantics rather than type. Use errors.Is against these, not type
// assertions: construction failures are usually errors.Join of several of
// them at once.
var (
	// ErrInvalidRules: the rule count is out of [2,128), no rule has zero
	// savings, or two rules fire at the same position in the annual cycle.
	// Fatal at construction.
	ErrInvalidRules = errors.New("tzrule: invalid rules")

	// ErrInconsistentInitial: the initial transition contradicts its
	// successor, or carries non-zero DST at the "rules forever" sentinel.
	// Fatal at construction.
	ErrInconsistentInitial = errors.New("tzrule: inconsistent initial transition")

	// ErrInvalidInterval: start > end was passed to TransitionsIn.
	ErrInvalidInterval = errors.New("tzrule: invalid interval")

	// ErrUnsupportedIndicator: an Indicator value outside {UTC, Standard,
	// Wall} reached construction. Indicates a programming error in the
	// caller, not a data problem.
	ErrUnsupportedIndicator = errors.New("tzrule: unsupported indicator")

	// ErrMalformedStream: Decode was given a stream that is not a model
	// written by Encode: a wrong header tag, a truncated field, or an
	// initial transition that is not at the standard offset.
	ErrMalformedStream = errors.New("tzrule: malformed stream")
)
