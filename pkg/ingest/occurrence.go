package ingest

import (
	"fmt"

	"github.com/controlgate/controlgate/pkg/evaluate"
	"github.com/controlgate/controlgate/pkg/finding"
	"github.com/controlgate/controlgate/pkg/jsonutil"
)

// occurrenceDoc mirrors the compliance platform's occurrence payload.
// The mapped detail carries the findings list; a document without an
// occurrence (or with a null detail) is the upstream no-data case that
// evaluates to not-found.
type occurrenceDoc struct {
	Occurrence *struct {
		Detail *struct {
			Findings []struct {
				Severity      string   `json:"severity"`
				ID            string   `json:"id"`
				WeaknessCodes []string `json:"cwes"`
				Location      string   `json:"location"`
			} `json:"findings"`
		} `json:"detail"`
	} `json:"occurrence"`
}

// ParseOccurrence adapts an occurrence JSON document.
func ParseOccurrence(data []byte) (evaluate.Input, error) {
	var doc occurrenceDoc
	if err := jsonutil.Unmarshal(data, &doc); err != nil {
		return evaluate.Input{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if doc.Occurrence == nil || doc.Occurrence.Detail == nil {
		return evaluate.Input{Found: false}, nil
	}

	records := make([]finding.Record, 0, len(doc.Occurrence.Detail.Findings))
	for _, f := range doc.Occurrence.Detail.Findings {
		records = append(records, finding.Record{
			Severity:      f.Severity,
			Identifier:    f.ID,
			WeaknessCodes: f.WeaknessCodes,
			Location:      f.Location,
		})
	}

	findings, err := finding.ClassifyAll(records)
	if err != nil {
		return evaluate.Input{}, fmt.Errorf("occurrence: %w", err)
	}
	return evaluate.Input{Found: true, Findings: findings}, nil
}
