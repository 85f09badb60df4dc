package evaluate

import (
	"strings"

	"github.com/controlgate/controlgate/pkg/finding"
	"github.com/controlgate/controlgate/pkg/policy"
)

// FilterByLocation removes findings whose location starts with any of
// the given path prefixes. Matching is literal and case-sensitive; the
// order of exclusions is irrelevant and one matching prefix suffices.
// A finding with an empty location is never excludable and survives.
// The input slice is not modified.
func FilterByLocation(findings []finding.Finding, exclusions []string) []finding.Finding {
	if len(exclusions) == 0 {
		return findings
	}
	surviving := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		if f.Location == "" || !matchesPrefix(f.Location, exclusions) {
			surviving = append(surviving, f)
		}
	}
	return surviving
}

func matchesPrefix(location string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(location, p) {
			return true
		}
	}
	return false
}

// FilterByException removes findings matching their bucket's exception
// list, either by identifier or by any weakness code. Matching is exact
// string equality on both axes; one axis matching suffices. Findings
// with no identifier and no weakness codes cannot match and survive.
// The input slice is not modified.
func FilterByException(findings []finding.Finding, p *policy.Policy) []finding.Finding {
	// One lookup set per bucket, built lazily.
	sets := make(map[finding.Severity]map[string]bool, len(finding.Severities))

	surviving := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		set, ok := sets[f.Severity]
		if !ok {
			set = p.ExceptionSet(f.Severity)
			sets[f.Severity] = set
		}
		if !f.MatchesException(set) {
			surviving = append(surviving, f)
		}
	}
	return surviving
}
