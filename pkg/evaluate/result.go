package evaluate

import "github.com/controlgate/controlgate/pkg/finding"

// Result is the immutable output of one evaluation.
type Result struct {
	// State is the terminal attestation state.
	State State `json:"state"`

	// PolicyName names the evaluated policy for reporting.
	PolicyName string `json:"policy_name,omitempty"`

	// CountsBySeverity maps every bucket to its surviving finding count
	// after exclusion and exception filtering. All four buckets are
	// always present, zero included.
	CountsBySeverity map[finding.Severity]int `json:"counts_by_severity"`

	// Violating lists the surviving findings of every bucket whose count
	// exceeded its maximum, in their original relative order.
	Violating []finding.Finding `json:"violating_findings,omitempty"`

	// Failures contains one human-readable message per failing bucket.
	Failures []string `json:"failures,omitempty"`
}

// newResult returns the canonical starting value: nothing passed,
// nothing counted, nothing violating. Every evaluation builds up from
// this value so no field ever relies on an implicit default.
func newResult(policyName string) Result {
	counts := make(map[finding.Severity]int, len(finding.Severities))
	for _, sev := range finding.Severities {
		counts[sev] = 0
	}
	return Result{
		PolicyName:       policyName,
		CountsBySeverity: counts,
		Violating:        nil,
		Failures:         nil,
	}
}

// Passed reports whether the result is a terminal success.
func (r Result) Passed() bool {
	return r.State == StatePass
}

// Count returns the surviving finding count for a bucket named by its
// string form. Convenience for templates and report code that works
// with plain strings.
func (r Result) Count(severity string) int {
	return r.CountsBySeverity[finding.Severity(severity)]
}
