// Package defaults provides canonical default values for the codebase.
// Reference these constants instead of hardcoding values at call sites.
package defaults

// Version is the current controlgate version.
const Version = "0.3.0"

// Tool identity used in SARIF and report output.
const (
	ToolName = "controlgate"
	ToolURI  = "https://github.com/controlgate/controlgate"
)

// Concurrency settings for the batch runner's worker pool.
const (
	// ConcurrencyMinimal is for single-threaded evaluation (1).
	ConcurrencyMinimal = 1

	// ConcurrencyDefault is for standard batch runs (8).
	ConcurrencyDefault = 8

	// ConcurrencyMax caps the worker pool (64).
	ConcurrencyMax = 64
)

// Metrics server defaults.
const (
	// MetricsPort is the default Prometheus listen port.
	MetricsPort = 9090

	// MetricsPath is the default Prometheus endpoint path.
	MetricsPath = "/metrics"
)
