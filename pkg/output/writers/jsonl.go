// Package writers provides output writers for various formats.
//
// This package contains implementations of the dispatcher.Writer
// interface: JSONL for streaming pipelines, a human-readable table,
// SARIF 2.1.0 for code-scanning upload, and a template writer for
// custom formats.
package writers

import (
	"io"
	"sync"

	"github.com/controlgate/controlgate/pkg/jsonutil"
	"github.com/controlgate/controlgate/pkg/output/dispatcher"
	"github.com/controlgate/controlgate/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*JSONLWriter)(nil)

// JSONLWriter writes events as newline-delimited JSON. Each event is a
// complete JSON object on one line, so jq, grep, and streaming parsers
// can process a run in real time.
type JSONLWriter struct {
	mu      sync.Mutex
	opts    JSONLOptions
	encoder *jsonutil.Encoder
}

// JSONLOptions configures the JSONL writer behavior.
type JSONLOptions struct {
	// OnlyAttestations filters output to attestation events, dropping
	// start/summary/error framing.
	OnlyAttestations bool

	// Pretty enables indented output. Not JSONL compliant, but useful
	// for debugging.
	Pretty bool
}

// NewJSONLWriter creates a JSONL writer targeting w.
// The writer is safe for concurrent use.
func NewJSONLWriter(w io.Writer, opts JSONLOptions) *JSONLWriter {
	encoder := jsonutil.NewEncoder(w)
	if opts.Pretty {
		encoder.SetIndent("  ")
	}
	return &JSONLWriter{opts: opts, encoder: encoder}
}

// Write writes an event as a single JSON line.
func (jw *JSONLWriter) Write(event events.Event) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	return jw.encoder.Encode(event)
}

// Flush is a no-op; every Write goes straight to the writer.
func (jw *JSONLWriter) Flush() error { return nil }

// Close is a no-op; the caller owns the underlying writer.
func (jw *JSONLWriter) Close() error { return nil }

// SupportsEvent reports which event types this writer emits.
func (jw *JSONLWriter) SupportsEvent(eventType events.EventType) bool {
	if jw.opts.OnlyAttestations {
		return eventType == events.EventTypeAttestation
	}
	return true
}
