package finding

import "errors"

// Sentinel errors for classification failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrMalformedFinding indicates a raw record could not be normalized
	// into a Finding. Classification rejects the whole batch on the first
	// malformed record rather than silently dropping it, because a dropped
	// record could hide a real violation.
	ErrMalformedFinding = errors.New("finding: malformed finding record")

	// ErrUnknownSeverity indicates a record carried a severity outside
	// the four recognized buckets (or none at all).
	ErrUnknownSeverity = errors.New("finding: unknown severity")
)
