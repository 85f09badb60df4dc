package writers

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/controlgate/controlgate/pkg/finding"
	"github.com/controlgate/controlgate/pkg/output/dispatcher"
	"github.com/controlgate/controlgate/pkg/output/events"
	"github.com/controlgate/controlgate/pkg/ui"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*TableWriter)(nil)

// TableWriter renders attestations and the run summary as plain text
// with colored state and severity markers, in the style of the CI
// wrapper scripts this tool replaces.
type TableWriter struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTableWriter creates a table writer targeting w.
func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{w: w}
}

// Write renders one event.
func (tw *TableWriter) Write(event events.Event) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	switch ev := event.(type) {
	case *events.AttestationEvent:
		return tw.writeAttestation(ev)
	case *events.ErrorEvent:
		_, err := fmt.Fprintf(tw.w, "%s  %s: %s\n", ui.RenderState("error"), ev.Control, ev.Message)
		return err
	case *events.SummaryEvent:
		return tw.writeSummary(ev)
	}
	return nil
}

func (tw *TableWriter) writeAttestation(ev *events.AttestationEvent) error {
	res := ev.Result
	if _, err := fmt.Fprintf(tw.w, "%s  %s", ui.RenderState(res.State.String()), ev.Control); err != nil {
		return err
	}
	if res.PolicyName != "" {
		if _, err := fmt.Fprintf(tw.w, "  (policy: %s)", res.PolicyName); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(tw.w); err != nil {
		return err
	}

	for _, sev := range finding.Severities {
		count := res.CountsBySeverity[sev]
		if count == 0 {
			continue
		}
		if _, err := fmt.Fprintf(tw.w, "    %-8s %d\n", ui.RenderSeverity(sev.String()), count); err != nil {
			return err
		}
	}
	for _, msg := range res.Failures {
		if _, err := fmt.Fprintf(tw.w, "    %s\n", msg); err != nil {
			return err
		}
	}
	for _, f := range res.Violating {
		line := f.Identifier
		if line == "" {
			line = "(no identifier)"
		}
		if f.Location != "" {
			line += "  " + f.Location
		}
		if _, err := fmt.Fprintf(tw.w, "      %s  %s\n", ui.RenderSeverity(f.Severity.String()), line); err != nil {
			return err
		}
	}
	return nil
}

func (tw *TableWriter) writeSummary(ev *events.SummaryEvent) error {
	t := ev.Totals
	_, err := fmt.Fprintf(tw.w,
		"\n%d controls: %d passed, %d failed, %d not required, %d not found, %d errors (%d violations) in %s\n",
		t.Controls, t.Passed, t.Failed, t.NotRequired, t.NotFound, t.Errors, t.Violations,
		ev.Duration.Round(time.Millisecond))
	return err
}

// Flush is a no-op.
func (tw *TableWriter) Flush() error { return nil }

// Close is a no-op; the caller owns the underlying writer.
func (tw *TableWriter) Close() error { return nil }

// SupportsEvent reports which event types this writer renders.
func (tw *TableWriter) SupportsEvent(eventType events.EventType) bool {
	switch eventType {
	case events.EventTypeAttestation, events.EventTypeError, events.EventTypeSummary:
		return true
	}
	return false
}
