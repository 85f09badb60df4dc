package evaluate

// State is the terminal attestation state of one evaluation.
// All values are lowercase strings for JSON and report output.
type State string

const (
	// StatePass indicates every severity bucket stayed within its maximum.
	StatePass State = "pass"

	// StateFail indicates at least one bucket exceeded its maximum and
	// the policy marks the control as required.
	StateFail State = "fail"

	// StateNotRequired indicates the thresholds were exceeded but the
	// policy marks the control as not required.
	StateNotRequired State = "not_required"

	// StateNotFound indicates no occurrence data existed upstream. The
	// engine never manufactures this state; it only reflects the no-data
	// signal supplied by the caller. Distinct from zero findings, which
	// evaluate normally (and pass when all maxima are met).
	StateNotFound State = "not_found"
)

// IsValid reports whether s is a recognized attestation state.
func (s State) IsValid() bool {
	switch s {
	case StatePass, StateFail, StateNotRequired, StateNotFound:
		return true
	}
	return false
}

// String returns the state as a string.
func (s State) String() string {
	return string(s)
}

// gate converts the overall threshold outcome plus the required flag
// into a terminal state. Mirrors the documented two-rule pattern:
// pass if all thresholds met; not-required if failing and not required;
// fail otherwise.
func gate(overallPass, required bool) State {
	switch {
	case overallPass:
		return StatePass
	case !required:
		return StateNotRequired
	default:
		return StateFail
	}
}
