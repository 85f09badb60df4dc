package finding

import "fmt"

// Finding is one reported issue from an external scanner, normalized
// for evaluation. Severity is assigned at ingestion and never changes.
type Finding struct {
	// Severity is the bucket used for threshold grouping.
	Severity Severity `json:"severity"`

	// Identifier is a CVE or tool-specific rule ID, used for
	// exception matching.
	Identifier string `json:"identifier,omitempty"`

	// WeaknessCodes holds CWE identifiers, used for exception matching.
	WeaknessCodes []string `json:"weakness_codes,omitempty"`

	// Location is the path the finding was reported at, used for
	// exclusion matching.
	Location string `json:"location,omitempty"`
}

// Record is a raw, already-flattened finding record as produced by an
// ingest adapter. Field names vary per scanner format; adapters map
// their format into this shape before classification.
type Record struct {
	Severity      string   `json:"severity"`
	Identifier    string   `json:"identifier,omitempty"`
	WeaknessCodes []string `json:"weakness_codes,omitempty"`
	Location      string   `json:"location,omitempty"`
}

// Classify normalizes a raw record into a Finding.
//
// A record with a missing or unrecognized severity is rejected with
// ErrMalformedFinding: the severity decides which threshold bucket the
// finding counts against, so guessing a default could hide violations.
func Classify(r Record) (Finding, error) {
	sev, err := ParseSeverity(r.Severity)
	if err != nil {
		return Finding{}, fmt.Errorf("%w: severity %q (identifier %q): %w",
			ErrMalformedFinding, r.Severity, r.Identifier, err)
	}

	f := Finding{
		Severity:   sev,
		Identifier: r.Identifier,
		Location:   r.Location,
	}
	if len(r.WeaknessCodes) > 0 {
		f.WeaknessCodes = make([]string, len(r.WeaknessCodes))
		copy(f.WeaknessCodes, r.WeaknessCodes)
	}
	return f, nil
}

// ClassifyAll normalizes a batch of raw records, preserving order.
// The batch is all-or-nothing: the first malformed record fails the
// whole call and no partial result is returned.
func ClassifyAll(records []Record) ([]Finding, error) {
	findings := make([]Finding, 0, len(records))
	for i, r := range records {
		f, err := Classify(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		findings = append(findings, f)
	}
	return findings, nil
}

// MatchesException reports whether the finding matches any entry of the
// given exception set, either by identifier or by weakness code.
// Matching is exact string equality on both axes.
func (f Finding) MatchesException(exceptions map[string]bool) bool {
	if len(exceptions) == 0 {
		return false
	}
	if f.Identifier != "" && exceptions[f.Identifier] {
		return true
	}
	for _, cwe := range f.WeaknessCodes {
		if exceptions[cwe] {
			return true
		}
	}
	return false
}
