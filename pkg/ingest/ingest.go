package ingest

import (
	"errors"
	"fmt"
	"os"

	"github.com/controlgate/controlgate/pkg/evaluate"
	"github.com/controlgate/controlgate/pkg/jsonutil"
)

// Sentinel errors for ingest failure modes.
var (
	// ErrUnsupportedFormat indicates the requested or detected payload
	// format has no adapter.
	ErrUnsupportedFormat = errors.New("ingest: unsupported format")

	// ErrInvalidPayload indicates the payload could not be parsed as the
	// expected format.
	ErrInvalidPayload = errors.New("ingest: invalid payload")
)

// Format names a supported input payload format.
type Format string

const (
	// FormatOccurrence is the compliance platform's occurrence JSON.
	FormatOccurrence Format = "occurrence"

	// FormatSARIF is SARIF 2.1.0.
	FormatSARIF Format = "sarif"

	// FormatAuto selects the format by sniffing the payload.
	FormatAuto Format = "auto"
)

// Parse adapts a raw payload in the given format into an evaluation input.
func Parse(data []byte, format Format) (evaluate.Input, error) {
	if format == FormatAuto {
		format = detect(data)
	}
	switch format {
	case FormatOccurrence:
		return ParseOccurrence(data)
	case FormatSARIF:
		return ParseSARIF(data)
	default:
		return evaluate.Input{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseFile reads and adapts a payload file.
func ParseFile(path string, format Format) (evaluate.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return evaluate.Input{}, fmt.Errorf("reading findings file: %w", err)
	}
	in, err := Parse(data, format)
	if err != nil {
		return evaluate.Input{}, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// detect sniffs the payload format. SARIF documents carry a "$schema"
// or "version" plus "runs" at the top level; everything else is treated
// as an occurrence document.
func detect(data []byte) Format {
	var probe struct {
		Schema string `json:"$schema"`
		Runs   []any  `json:"runs"`
	}
	if err := jsonutil.Unmarshal(data, &probe); err == nil {
		if probe.Schema != "" || probe.Runs != nil {
			return FormatSARIF
		}
	}
	return FormatOccurrence
}
