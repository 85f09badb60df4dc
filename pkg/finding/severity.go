package finding

import "strings"

// Severity represents the severity bucket of a finding.
// All values are lowercase strings matching the convention used by
// the scanner formats we ingest.
type Severity string

const (
	// Critical represents immediate compromise potential (RCE, auth bypass).
	Critical Severity = "critical"

	// High represents significant impact requiring prompt fix (SQLi, stored XSS).
	High Severity = "high"

	// Medium represents moderate impact (reflected XSS, CSRF).
	Medium Severity = "medium"

	// Low represents limited impact (verbose errors, minor info leak).
	Low Severity = "low"
)

// Severities lists all buckets from most to least severe. Threshold
// evaluation iterates this slice so every bucket is always considered,
// whether or not the policy configures it.
var Severities = []Severity{Critical, High, Medium, Low}

// IsValid reports whether s is a recognized severity bucket.
func (s Severity) IsValid() bool {
	switch s {
	case Critical, High, Medium, Low:
		return true
	}
	return false
}

// Score returns a numeric score for sorting and comparison.
// Critical=4, High=3, Medium=2, Low=1, Unknown=0.
func (s Severity) Score() int {
	switch s {
	case Critical:
		return 4
	case High:
		return 3
	case Medium:
		return 2
	case Low:
		return 1
	default:
		return 0
	}
}

// String returns the severity as a string.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity normalizes a raw severity string into a Severity.
// Matching is case-insensitive and tolerates surrounding whitespace
// because scanner formats disagree on casing ("HIGH", "High", "high").
// Returns ErrUnknownSeverity for anything outside the four buckets.
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrUnknownSeverity
	}
	return s, nil
}

// ToSARIF maps severity to a SARIF result level.
// Critical/High → error, Medium → warning, Low → note.
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/
func (s Severity) ToSARIF() string {
	switch s {
	case Critical, High:
		return "error"
	case Medium:
		return "warning"
	default:
		return "note"
	}
}

// FromSARIF maps a SARIF result level back to a severity bucket.
// error → high, warning → medium, note/none → low. SARIF levels are
// coarser than our buckets, so critical never round-trips.
func FromSARIF(level string) Severity {
	switch strings.ToLower(level) {
	case "error":
		return High
	case "warning":
		return Medium
	default:
		return Low
	}
}
