package evaluate

import (
	"fmt"

	"github.com/controlgate/controlgate/pkg/finding"
	"github.com/controlgate/controlgate/pkg/policy"
)

// Input carries one evaluation's findings plus the upstream signal of
// whether any occurrence data existed at all. Found=false means the
// external collaborator had no material to evaluate, which is distinct
// from zero findings after filtering.
type Input struct {
	Found    bool
	Findings []finding.Finding
}

// Run evaluates findings against the policy, assuming occurrence data
// is present. Equivalent to Evaluate(Input{Found: true, Findings: findings}, p).
func Run(findings []finding.Finding, p *policy.Policy) Result {
	return Evaluate(Input{Found: true, Findings: findings}, p)
}

// Evaluate runs the full pipeline: location exclusion, exception
// resolution, per-bucket threshold comparison, and the requirement gate.
// It is pure and idempotent; the same inputs always yield the same result.
func Evaluate(in Input, p *policy.Policy) Result {
	result := newResult(p.Name)

	if !in.Found {
		result.State = StateNotFound
		return result
	}

	surviving := FilterByLocation(in.Findings, p.LocationExclusions)
	surviving = FilterByException(surviving, p)

	for _, f := range surviving {
		result.CountsBySeverity[f.Severity]++
	}

	overallPass := true
	failing := make(map[finding.Severity]bool, len(finding.Severities))
	for _, sev := range finding.Severities {
		count := result.CountsBySeverity[sev]
		maximum := p.SeverityPolicyFor(sev).Maximum
		if count > maximum {
			overallPass = false
			failing[sev] = true
			result.Failures = append(result.Failures,
				fmt.Sprintf("%s findings (%d) exceed maximum (%d)", sev, count, maximum))
		}
	}

	// Violating findings keep their original relative order.
	for _, f := range surviving {
		if failing[f.Severity] {
			result.Violating = append(result.Violating, f)
		}
	}

	result.State = gate(overallPass, p.Required)
	return result
}
