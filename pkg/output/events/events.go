package events

import (
	"time"

	"github.com/controlgate/controlgate/pkg/evaluate"
)

// StartEvent is emitted when an evaluation run begins.
type StartEvent struct {
	BaseEvent
	Controls int `json:"controls"`
}

// NewStartEvent creates a StartEvent for a run over the given number of
// controls.
func NewStartEvent(runID string, controls int) *StartEvent {
	return &StartEvent{
		BaseEvent: newBase(EventTypeStart, runID),
		Controls:  controls,
	}
}

// AttestationEvent is emitted once per evaluated control, carrying the
// full evaluation result.
type AttestationEvent struct {
	BaseEvent
	Control string          `json:"control"`
	Result  evaluate.Result `json:"result"`
}

// NewAttestationEvent creates an AttestationEvent for one control's result.
func NewAttestationEvent(runID, control string, result evaluate.Result) *AttestationEvent {
	return &AttestationEvent{
		BaseEvent: newBase(EventTypeAttestation, runID),
		Control:   control,
		Result:    result,
	}
}

// ErrorEvent is emitted when a control could not be evaluated at all
// (bad policy, malformed findings). Distinct from a fail attestation.
type ErrorEvent struct {
	BaseEvent
	Control string `json:"control,omitempty"`
	Message string `json:"message"`
}

// NewErrorEvent creates an ErrorEvent.
func NewErrorEvent(runID, control, message string) *ErrorEvent {
	return &ErrorEvent{
		BaseEvent: newBase(EventTypeError, runID),
		Control:   control,
		Message:   message,
	}
}

// SummaryTotals aggregates terminal states across a run.
type SummaryTotals struct {
	Controls    int `json:"controls"`
	Passed      int `json:"passed"`
	Failed      int `json:"failed"`
	NotRequired int `json:"not_required"`
	NotFound    int `json:"not_found"`
	Errors      int `json:"errors"`
	Violations  int `json:"violations"`
}

// SummaryEvent is the final event of a run.
type SummaryEvent struct {
	BaseEvent
	Totals   SummaryTotals `json:"totals"`
	Duration time.Duration `json:"duration_ns"`
}

// NewSummaryEvent creates the run summary.
func NewSummaryEvent(runID string, totals SummaryTotals, duration time.Duration) *SummaryEvent {
	return &SummaryEvent{
		BaseEvent: newBase(EventTypeSummary, runID),
		Totals:    totals,
		Duration:  duration,
	}
}

// Record updates the totals with one terminal result.
func (t *SummaryTotals) Record(result evaluate.Result) {
	t.Controls++
	t.Violations += len(result.Violating)
	switch result.State {
	case evaluate.StatePass:
		t.Passed++
	case evaluate.StateFail:
		t.Failed++
	case evaluate.StateNotRequired:
		t.NotRequired++
	case evaluate.StateNotFound:
		t.NotFound++
	}
}
