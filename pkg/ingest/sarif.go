package ingest

import (
	"fmt"

	"github.com/controlgate/controlgate/pkg/evaluate"
	"github.com/controlgate/controlgate/pkg/finding"
	"github.com/controlgate/controlgate/pkg/jsonutil"
)

// sarifDoc mirrors the subset of SARIF 2.1.0 we consume: result level,
// rule ID, first physical location, and the common cwe property bag
// emitted by semgrep-style tools (string or list of strings).
type sarifDoc struct {
	Runs []struct {
		Results []struct {
			RuleID    string `json:"ruleId"`
			Level     string `json:"level"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
				} `json:"physicalLocation"`
			} `json:"locations"`
			Properties struct {
				Severity string `json:"severity"`
				CWE      any    `json:"cwe"`
			} `json:"properties"`
		} `json:"results"`
	} `json:"runs"`
}

// ParseSARIF adapts a SARIF 2.1.0 document. Severity comes from the
// result's property bag when a tool emits one, falling back to the
// SARIF level mapping otherwise. A document with no runs is the no-data
// case.
func ParseSARIF(data []byte) (evaluate.Input, error) {
	var doc sarifDoc
	if err := jsonutil.Unmarshal(data, &doc); err != nil {
		return evaluate.Input{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if len(doc.Runs) == 0 {
		return evaluate.Input{Found: false}, nil
	}

	var records []finding.Record
	for _, run := range doc.Runs {
		for _, r := range run.Results {
			severity := r.Properties.Severity
			if severity == "" {
				severity = finding.FromSARIF(r.Level).String()
			}

			location := ""
			if len(r.Locations) > 0 {
				location = r.Locations[0].PhysicalLocation.ArtifactLocation.URI
			}

			records = append(records, finding.Record{
				Severity:      severity,
				Identifier:    r.RuleID,
				WeaknessCodes: weaknessCodes(r.Properties.CWE),
				Location:      location,
			})
		}
	}

	findings, err := finding.ClassifyAll(records)
	if err != nil {
		return evaluate.Input{}, fmt.Errorf("sarif: %w", err)
	}
	return evaluate.Input{Found: true, Findings: findings}, nil
}

// weaknessCodes normalizes the cwe property bag, which tools emit as a
// single string, a list, or not at all.
func weaknessCodes(v any) []string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return []string{t}
		}
	case []any:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
