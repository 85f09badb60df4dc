package runner

import "errors"

// Sentinel errors for runner failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrNoControls indicates the batch contained nothing to evaluate.
	ErrNoControls = errors.New("runner: no controls to evaluate")

	// ErrInterrupted indicates the run was cancelled before every
	// control finished evaluating.
	ErrInterrupted = errors.New("runner: run interrupted")
)
