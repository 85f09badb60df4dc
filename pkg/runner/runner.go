// Package runner provides concurrent batch evaluation of controls.
// Each control pairs a findings source with a policy; the runner fans
// the batch out over a worker pool, emits events as controls complete,
// and returns outcomes in input order.
package runner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/controlgate/controlgate/pkg/defaults"
	"github.com/controlgate/controlgate/pkg/evaluate"
	"github.com/controlgate/controlgate/pkg/output/dispatcher"
	"github.com/controlgate/controlgate/pkg/output/events"
	"github.com/controlgate/controlgate/pkg/policy"
	"github.com/controlgate/controlgate/pkg/workerpool"
)

// LoadFunc produces the evaluation input for one control. Loading runs
// inside the worker pool, so expensive parsing does not serialize the
// batch.
type LoadFunc func(ctx context.Context) (evaluate.Input, error)

// StaticInput returns a LoadFunc that yields a fixed input.
func StaticInput(in evaluate.Input) LoadFunc {
	return func(context.Context) (evaluate.Input, error) {
		return in, nil
	}
}

// Control is one unit of work: a named findings source evaluated
// against a policy.
type Control struct {
	Name   string
	Policy *policy.Policy
	Load   LoadFunc
}

// Outcome is the result of evaluating a single control.
type Outcome struct {
	Control  string
	Result   evaluate.Result
	Err      error
	Duration time.Duration
}

// Stats tracks execution statistics.
type Stats struct {
	Total     int64
	Completed int64
	Errored   int64
	StartTime time.Time
}

// Progress returns completion percentage (0-100).
func (s *Stats) Progress() float64 {
	total := atomic.LoadInt64(&s.Total)
	if total == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&s.Completed)) / float64(total) * 100
}

// Runner evaluates control batches concurrently.
type Runner struct {
	// Concurrency is the number of parallel workers (default 8).
	Concurrency int

	// Events receives start, attestation, error, and summary events.
	// Nil disables event dispatch.
	Events *dispatcher.Dispatcher

	// Stats tracks execution statistics for the current run.
	Stats Stats

	// OnProgress is called after each control completes (optional).
	OnProgress func(completed, total int64, outcome Outcome)
}

// New creates a runner with default settings.
func New() *Runner {
	return &Runner{Concurrency: defaults.ConcurrencyDefault}
}

// Run evaluates every control in the batch and returns outcomes in
// input order. Controls whose findings cannot be loaded produce an
// Outcome with Err set; the rest of the batch still evaluates. A
// cancelled context stops unstarted work and returns ErrInterrupted
// alongside the partial outcomes.
func (r *Runner) Run(ctx context.Context, controls []Control) ([]Outcome, error) {
	if len(controls) == 0 {
		return nil, ErrNoControls
	}

	r.Stats = Stats{
		Total:     int64(len(controls)),
		StartTime: time.Now(),
	}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = defaults.ConcurrencyDefault
	}
	if concurrency > len(controls) {
		concurrency = len(controls)
	}

	runID := events.NewRunID()
	r.dispatch(ctx, events.NewStartEvent(runID, len(controls)))

	pool := workerpool.New(concurrency)
	outcomes := make([]Outcome, len(controls))
	done := make(chan int, len(controls))

	submitted := 0
	for i, c := range controls {
		if ctx.Err() != nil {
			break
		}

		idx, ctrl := i, c
		pool.Submit(func() {
			outcomes[idx] = r.evaluateOne(ctx, runID, ctrl)
			done <- idx
		})
		submitted++
	}

	for n := 0; n < submitted; n++ {
		idx := <-done
		if r.OnProgress != nil {
			r.OnProgress(
				atomic.LoadInt64(&r.Stats.Completed),
				atomic.LoadInt64(&r.Stats.Total),
				outcomes[idx],
			)
		}
	}
	pool.Close()

	var totals events.SummaryTotals
	for i := 0; i < submitted; i++ {
		if outcomes[i].Err != nil {
			totals.Controls++
			totals.Errors++
			continue
		}
		totals.Record(outcomes[i].Result)
	}
	r.dispatch(ctx, events.NewSummaryEvent(runID, totals, time.Since(r.Stats.StartTime)))

	if err := ctx.Err(); err != nil {
		return outcomes[:submitted], ErrInterrupted
	}
	return outcomes, nil
}

// evaluateOne loads and evaluates a single control, emitting the
// matching event.
func (r *Runner) evaluateOne(ctx context.Context, runID string, c Control) Outcome {
	start := time.Now()
	outcome := Outcome{Control: c.Name}

	in, err := c.Load(ctx)
	if err != nil {
		outcome.Err = err
		outcome.Duration = time.Since(start)
		atomic.AddInt64(&r.Stats.Completed, 1)
		atomic.AddInt64(&r.Stats.Errored, 1)
		r.dispatch(ctx, events.NewErrorEvent(runID, c.Name, err.Error()))
		return outcome
	}

	outcome.Result = evaluate.Evaluate(in, c.Policy)
	outcome.Duration = time.Since(start)
	atomic.AddInt64(&r.Stats.Completed, 1)
	r.dispatch(ctx, events.NewAttestationEvent(runID, c.Name, outcome.Result))
	return outcome
}

func (r *Runner) dispatch(ctx context.Context, event events.Event) {
	if r.Events == nil {
		return
	}
	_ = r.Events.Dispatch(ctx, event)
}
