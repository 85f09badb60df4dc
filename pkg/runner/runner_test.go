package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/controlgate/controlgate/pkg/evaluate"
	"github.com/controlgate/controlgate/pkg/finding"
	"github.com/controlgate/controlgate/pkg/output/dispatcher"
	"github.com/controlgate/controlgate/pkg/output/events"
	"github.com/controlgate/controlgate/pkg/policy"
)

func strictPolicy(required bool) *policy.Policy {
	return &policy.Policy{
		Name:     "strict",
		Required: required,
		Severities: map[finding.Severity]policy.SeverityPolicy{
			finding.Critical: {Maximum: 0},
			finding.High:     {Maximum: 0},
			finding.Medium:   {Maximum: 0},
			finding.Low:      {Maximum: 0},
		},
	}
}

func criticalFinding(id string) finding.Finding {
	return finding.Finding{Severity: finding.Critical, Identifier: id}
}

// captureWriter records every event it receives.
type captureWriter struct {
	mu     sync.Mutex
	events []events.Event
}

func (w *captureWriter) Write(ev events.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, ev)
	return nil
}

func (w *captureWriter) Flush() error                        { return nil }
func (w *captureWriter) Close() error                        { return nil }
func (w *captureWriter) SupportsEvent(events.EventType) bool { return true }

func (w *captureWriter) byType(t events.EventType) []events.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []events.Event
	for _, ev := range w.events {
		if ev.EventType() == t {
			out = append(out, ev)
		}
	}
	return out
}

func TestRunEmptyBatch(t *testing.T) {
	t.Parallel()

	r := New()
	_, err := r.Run(context.Background(), nil)
	if !errors.Is(err, ErrNoControls) {
		t.Fatalf("Run(nil) error = %v, want ErrNoControls", err)
	}
}

func TestRunOutcomesInInputOrder(t *testing.T) {
	t.Parallel()

	p := strictPolicy(true)
	controls := []Control{
		{Name: "c0", Policy: p, Load: StaticInput(evaluate.Input{Found: true})},
		{Name: "c1", Policy: p, Load: StaticInput(evaluate.Input{
			Found:    true,
			Findings: []finding.Finding{criticalFinding("CVE-1")},
		})},
		{Name: "c2", Policy: p, Load: StaticInput(evaluate.Input{Found: false})},
	}

	r := New()
	r.Concurrency = 3
	outcomes, err := r.Run(context.Background(), controls)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}

	wantStates := []evaluate.State{
		evaluate.StatePass, evaluate.StateFail, evaluate.StateNotFound,
	}
	for i, want := range wantStates {
		if outcomes[i].Control != controls[i].Name {
			t.Errorf("outcomes[%d].Control = %q, want %q",
				i, outcomes[i].Control, controls[i].Name)
		}
		if outcomes[i].Result.State != want {
			t.Errorf("outcomes[%d].State = %q, want %q",
				i, outcomes[i].Result.State, want)
		}
	}
}

func TestRunLoadErrorDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	loadErr := errors.New("payload unreadable")
	p := strictPolicy(true)
	controls := []Control{
		{Name: "broken", Policy: p, Load: func(context.Context) (evaluate.Input, error) {
			return evaluate.Input{}, loadErr
		}},
		{Name: "healthy", Policy: p, Load: StaticInput(evaluate.Input{Found: true})},
	}

	r := New()
	outcomes, err := r.Run(context.Background(), controls)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !errors.Is(outcomes[0].Err, loadErr) {
		t.Errorf("outcomes[0].Err = %v, want %v", outcomes[0].Err, loadErr)
	}
	if outcomes[1].Err != nil || outcomes[1].Result.State != evaluate.StatePass {
		t.Errorf("healthy control was not evaluated: %+v", outcomes[1])
	}
}

func TestRunDispatchesEvents(t *testing.T) {
	t.Parallel()

	w := &captureWriter{}
	d := dispatcher.New()
	d.RegisterWriter(w)

	p := strictPolicy(true)
	controls := []Control{
		{Name: "c0", Policy: p, Load: StaticInput(evaluate.Input{Found: true})},
		{Name: "c1", Policy: p, Load: func(context.Context) (evaluate.Input, error) {
			return evaluate.Input{}, errors.New("bad payload")
		}},
	}

	r := New()
	r.Events = d
	if _, err := r.Run(context.Background(), controls); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := len(w.byType(events.EventTypeStart)); got != 1 {
		t.Errorf("start events = %d, want 1", got)
	}
	if got := len(w.byType(events.EventTypeAttestation)); got != 1 {
		t.Errorf("attestation events = %d, want 1", got)
	}
	if got := len(w.byType(events.EventTypeError)); got != 1 {
		t.Errorf("error events = %d, want 1", got)
	}

	summaries := w.byType(events.EventTypeSummary)
	if len(summaries) != 1 {
		t.Fatalf("summary events = %d, want 1", len(summaries))
	}
	sum := summaries[0].(*events.SummaryEvent)
	if sum.Totals.Controls != 2 || sum.Totals.Passed != 1 || sum.Totals.Errors != 1 {
		t.Errorf("summary totals = %+v", sum.Totals)
	}
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := strictPolicy(true)
	controls := []Control{
		{Name: "c0", Policy: p, Load: StaticInput(evaluate.Input{Found: true})},
		{Name: "c1", Policy: p, Load: StaticInput(evaluate.Input{Found: true})},
	}

	r := New()
	outcomes, err := r.Run(ctx, controls)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("Run() error = %v, want ErrInterrupted", err)
	}
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes on pre-cancelled context, want 0", len(outcomes))
	}
}

func TestRunProgressCallback(t *testing.T) {
	t.Parallel()

	p := strictPolicy(true)
	var controls []Control
	for i := 0; i < 5; i++ {
		controls = append(controls, Control{
			Name: "c", Policy: p, Load: StaticInput(evaluate.Input{Found: true}),
		})
	}

	var mu sync.Mutex
	calls := 0
	r := New()
	r.OnProgress = func(completed, total int64, _ Outcome) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
	}

	if _, err := r.Run(context.Background(), controls); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 5 {
		t.Errorf("OnProgress called %d times, want 5", calls)
	}
	if r.Stats.Completed != 5 {
		t.Errorf("Stats.Completed = %d, want 5", r.Stats.Completed)
	}
	if r.Stats.Progress() != 100 {
		t.Errorf("Stats.Progress() = %v, want 100", r.Stats.Progress())
	}
}

func TestOutcomeDurationRecorded(t *testing.T) {
	t.Parallel()

	p := strictPolicy(true)
	slow := Control{Name: "slow", Policy: p, Load: func(context.Context) (evaluate.Input, error) {
		time.Sleep(10 * time.Millisecond)
		return evaluate.Input{Found: true}, nil
	}}

	r := New()
	outcomes, err := r.Run(context.Background(), []Control{slow})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcomes[0].Duration < 10*time.Millisecond {
		t.Errorf("Duration = %v, want >= 10ms", outcomes[0].Duration)
	}
}
