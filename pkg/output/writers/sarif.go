package writers

import (
	"fmt"
	"io"
	"sync"

	"github.com/controlgate/controlgate/pkg/defaults"
	"github.com/controlgate/controlgate/pkg/jsonutil"
	"github.com/controlgate/controlgate/pkg/output/dispatcher"
	"github.com/controlgate/controlgate/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*SARIFWriter)(nil)

// SARIFWriter writes violating findings in SARIF 2.1.0 format, the
// interchange format accepted by GitHub code scanning, GitLab SAST, and
// Azure DevOps. Results are buffered and written as one complete SARIF
// document on Close.
type SARIFWriter struct {
	w       io.Writer
	mu      sync.Mutex
	opts    SARIFOptions
	results []sarifResult
	rules   map[string]sarifRule
	order   []string
	closed  bool
}

// SARIFOptions configures the SARIF writer.
type SARIFOptions struct {
	// ToolName overrides the tool name (default: controlgate).
	ToolName string

	// ToolVersion overrides the tool version.
	ToolVersion string
}

// SARIF 2.1.0 structures, reduced to the fields we emit.

type sarifDocument struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

// NewSARIFWriter creates a SARIF writer targeting w.
func NewSARIFWriter(w io.Writer, opts SARIFOptions) *SARIFWriter {
	if opts.ToolName == "" {
		opts.ToolName = defaults.ToolName
	}
	if opts.ToolVersion == "" {
		opts.ToolVersion = defaults.Version
	}
	return &SARIFWriter{
		w:     w,
		opts:  opts,
		rules: make(map[string]sarifRule),
	}
}

// Write buffers the violating findings of an attestation event.
func (sw *SARIFWriter) Write(event events.Event) error {
	ev, ok := event.(*events.AttestationEvent)
	if !ok {
		return nil
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	for _, f := range ev.Result.Violating {
		ruleID := f.Identifier
		if ruleID == "" {
			ruleID = "unidentified-finding"
		}
		if _, seen := sw.rules[ruleID]; !seen {
			rule := sarifRule{ID: ruleID}
			if len(f.WeaknessCodes) > 0 {
				rule.Properties = map[string]any{"cwe": f.WeaknessCodes}
			}
			sw.rules[ruleID] = rule
			sw.order = append(sw.order, ruleID)
		}

		result := sarifResult{
			RuleID: ruleID,
			Level:  f.Severity.ToSARIF(),
			Message: sarifMessage{
				Text: fmt.Sprintf("%s finding %s violates control %q", f.Severity, ruleID, ev.Control),
			},
		}
		if f.Location != "" {
			result.Locations = []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: f.Location},
				},
			}}
		}
		sw.results = append(sw.results, result)
	}
	return nil
}

// Flush is a no-op; the document is only complete on Close.
func (sw *SARIFWriter) Flush() error { return nil }

// Close writes the complete SARIF document.
func (sw *SARIFWriter) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.closed {
		return nil
	}
	sw.closed = true

	rules := make([]sarifRule, 0, len(sw.order))
	for _, id := range sw.order {
		rules = append(rules, sw.rules[id])
	}

	doc := sarifDocument{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:           sw.opts.ToolName,
				Version:        sw.opts.ToolVersion,
				InformationURI: defaults.ToolURI,
				Rules:          rules,
			}},
			Results: sw.results,
		}},
	}

	data, err := jsonutil.MarshalIndent(doc, "  ")
	if err != nil {
		return fmt.Errorf("encoding sarif document: %w", err)
	}
	_, err = sw.w.Write(append(data, '\n'))
	return err
}

// SupportsEvent reports which event types this writer consumes.
func (sw *SARIFWriter) SupportsEvent(eventType events.EventType) bool {
	return eventType == events.EventTypeAttestation
}
