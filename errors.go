package hptt

import "errors"

// Sentinel error kinds, matching the error surface in the design (§7).
// Wrap these with fmt.Errorf("...: %w", ErrX) for context and recover them
// with errors.Is.
var (
	// ErrInvalidShape covers rank < 1, a permutation that isn't a
	// bijection, an outer size smaller than the logical size, aliased A/B
	// buffers with overlapping footprints (also reported as
	// ErrUnsupportedLayout), or a nil buffer. Plan creation is rejected
	// outright.
	ErrInvalidShape = errors.New("hptt: invalid shape")

	// ErrUnsupportedLayout covers combinations the micro-kernel cannot
	// service, such as aliased A/B buffers with overlapping footprints.
	ErrUnsupportedLayout = errors.New("hptt: unsupported layout")

	// ErrPlanningTimeout marks the diagnostic selectPlan wraps and prints
	// (under HPTT_VERBOSE>=1) when a MEASURE-class trial exhausts its
	// budget before every candidate has been timed; the selector still
	// returns the best candidate found so far rather than failing
	// CreatePlan, so callers should not normally observe this value
	// escape CreatePlan itself. It is exported so tests and
	// instrumentation can detect the fallback via errors.Is against that
	// wrapped diagnostic.
	ErrPlanningTimeout = errors.New("hptt: planning timeout")

	// ErrInternal marks an invariant violation inside the executor, such
	// as a worker's assigned axis range falling outside the axis it
	// restricts. Its presence indicates a bug in this package, not
	// caller misuse; code that detects one panics with it wrapped rather
	// than returning it, since there is no valid way to continue.
	ErrInternal = errors.New("hptt: internal invariant violation")
)
