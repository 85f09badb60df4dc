package writers

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/controlgate/controlgate/pkg/output/dispatcher"
	"github.com/controlgate/controlgate/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Writer = (*TemplateWriter)(nil)

// TemplateConfig configures the template writer.
type TemplateConfig struct {
	// TemplatePath is the path to a custom template file.
	TemplatePath string

	// TemplateString is an inline template (alternative to TemplatePath).
	TemplateString string

	// BuiltIn names a built-in template: "csv" or "text-summary".
	BuiltIn string
}

// builtInTemplates contains pre-defined templates for common formats.
var builtInTemplates = map[string]string{
	"csv": `control,state,policy,critical,high,medium,low,violations
{{- range .Attestations }}
{{ .Control }},{{ .Result.State }},{{ .Result.PolicyName }},{{ .Result.Count "critical" }},{{ .Result.Count "high" }},{{ .Result.Count "medium" }},{{ .Result.Count "low" }},{{ len .Result.Violating }}
{{- end }}`,

	"text-summary": `run {{ .RunID }}
{{- range .Attestations }}
{{ .Result.State | toString | upper | printf "%-13s" }} {{ .Control }}
{{- end }}
{{- with .Summary }}
{{ .Totals.Controls }} controls, {{ .Totals.Passed }} passed, {{ .Totals.Failed }} failed, {{ .Totals.NotRequired }} not required, {{ .Totals.NotFound }} not found
{{- end }}`,
}

// TemplateData is the data passed to templates on Close.
type TemplateData struct {
	RunID        string
	Attestations []*events.AttestationEvent
	Summary      *events.SummaryEvent
}

// TemplateWriter renders buffered events through a Go text/template
// with the sprig function library, for custom report formats. The
// template runs once, on Close, over the complete run.
type TemplateWriter struct {
	w    io.Writer
	mu   sync.Mutex
	tmpl *template.Template
	data TemplateData
}

// NewTemplateWriter creates a template writer targeting w.
// Exactly one of the config's template sources must be set.
func NewTemplateWriter(w io.Writer, cfg TemplateConfig) (*TemplateWriter, error) {
	text := cfg.TemplateString
	switch {
	case cfg.BuiltIn != "":
		builtin, ok := builtInTemplates[cfg.BuiltIn]
		if !ok {
			return nil, fmt.Errorf("unknown built-in template %q", cfg.BuiltIn)
		}
		text = builtin
	case cfg.TemplatePath != "":
		data, err := os.ReadFile(cfg.TemplatePath)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		text = string(data)
	case text == "":
		return nil, fmt.Errorf("template writer needs a template source")
	}

	tmpl, err := template.New("report").Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &TemplateWriter{w: w, tmpl: tmpl}, nil
}

// Write buffers an event for the final render.
func (tw *TemplateWriter) Write(event events.Event) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.data.RunID == "" {
		tw.data.RunID = event.RunID()
	}
	switch ev := event.(type) {
	case *events.AttestationEvent:
		tw.data.Attestations = append(tw.data.Attestations, ev)
	case *events.SummaryEvent:
		tw.data.Summary = ev
	}
	return nil
}

// Flush is a no-op; rendering happens on Close.
func (tw *TemplateWriter) Flush() error { return nil }

// Close renders the template over the buffered run.
func (tw *TemplateWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.tmpl.Execute(tw.w, tw.data)
}

// SupportsEvent reports which event types this writer consumes.
func (tw *TemplateWriter) SupportsEvent(eventType events.EventType) bool {
	switch eventType {
	case events.EventTypeAttestation, events.EventTypeSummary:
		return true
	}
	return false
}
