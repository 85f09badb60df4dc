// Package events defines the event types emitted during control
// evaluation. All events are designed for JSON serialization and CI/CD
// integration. BaseEvent is embedded by the specific event types.
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of output event.
type EventType string

const (
	// EventTypeStart indicates an evaluation run has started.
	EventTypeStart EventType = "start"
	// EventTypeAttestation indicates one control evaluation finished.
	EventTypeAttestation EventType = "attestation"
	// EventTypeError indicates an evaluation could not run.
	EventTypeError EventType = "error"
	// EventTypeSummary indicates a run summary.
	EventTypeSummary EventType = "summary"
)

// Event is the interface implemented by all output events.
type Event interface {
	// EventType returns the type of this event.
	EventType() EventType

	// Timestamp returns when this event occurred.
	Timestamp() time.Time

	// RunID returns the unique identifier of the run that produced
	// this event.
	RunID() string
}

// BaseEvent carries the fields shared by every event.
type BaseEvent struct {
	Type EventType `json:"type"`
	Time time.Time `json:"timestamp"`
	Run  string    `json:"run_id"`
}

// EventType returns the type of this event.
func (e BaseEvent) EventType() EventType { return e.Type }

// Timestamp returns when this event occurred.
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// RunID returns the unique identifier of the run that produced this event.
func (e BaseEvent) RunID() string { return e.Run }

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

func newBase(t EventType, runID string) BaseEvent {
	return BaseEvent{Type: t, Time: time.Now().UTC(), Run: runID}
}
