// Package dispatcher provides the central event routing for output.
// It receives events from the evaluation runner and routes them to
// registered writers and hooks. Writers handle file output (JSONL,
// SARIF, tables), while hooks handle live integrations (logging,
// metrics, tracing).
//
// The dispatcher decouples event generation from event consumption: the
// runner emits every event exactly once and never knows who listens.
package dispatcher

import (
	"context"
	"sync"

	"github.com/controlgate/controlgate/pkg/output/events"
)

// Writer is the interface for all output writers.
type Writer interface {
	// Write writes an event to the output.
	Write(event events.Event) error

	// Flush ensures all buffered events are written.
	Flush() error

	// Close closes the writer and releases any resources.
	Close() error

	// SupportsEvent returns true if the writer handles this event type.
	SupportsEvent(eventType events.EventType) bool
}

// Hook is the interface for event hooks.
type Hook interface {
	// OnEvent is called for each matching event.
	OnEvent(ctx context.Context, event events.Event) error

	// EventTypes returns the event types this hook handles.
	// Return nil or an empty slice to receive all events.
	EventTypes() []events.EventType
}

// Dispatcher routes events to writers and hooks.
// It is safe for concurrent use.
type Dispatcher struct {
	mu      sync.RWMutex
	writers []Writer
	hooks   []Hook
}

// New creates an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

// RegisterWriter adds a writer. Writers receive events matching their
// SupportsEvent filter.
func (d *Dispatcher) RegisterWriter(w Writer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writers = append(d.writers, w)
}

// RegisterHook adds a hook. Hooks receive events matching their
// EventTypes filter.
func (d *Dispatcher) RegisterHook(h Hook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, h)
}

// Dispatch sends an event to all registered writers and hooks. A
// failing consumer never blocks the others; Dispatch returns nil so
// event flow continues regardless of individual consumer errors.
func (d *Dispatcher) Dispatch(ctx context.Context, event events.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, w := range d.writers {
		if w.SupportsEvent(event.EventType()) {
			_ = w.Write(event)
		}
	}
	for _, h := range d.hooks {
		if hookSupportsEvent(h, event.EventType()) {
			_ = h.OnEvent(ctx, event)
		}
	}
	return nil
}

// Flush flushes all writers, returning the first error encountered.
func (d *Dispatcher) Flush() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var firstErr error
	for _, w := range d.writers {
		if err := w.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all writers, returning the first error encountered.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for _, w := range d.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.writers = nil
	d.hooks = nil
	return firstErr
}

func hookSupportsEvent(h Hook, eventType events.EventType) bool {
	types := h.EventTypes()
	// Empty slice means the hook receives all events.
	if len(types) == 0 {
		return true
	}
	for _, et := range types {
		if et == eventType {
			return true
		}
	}
	return false
}
