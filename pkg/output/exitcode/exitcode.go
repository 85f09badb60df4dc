// Package exitcode provides semantic exit codes for CI/CD integration.
// Exit codes communicate evaluation outcomes to automation pipelines.
//
// Exit codes:
//   - 0: Pass (every required control within policy)
//   - 1: Fail (a required control exceeded a threshold)
//   - 2: Not required (thresholds exceeded on non-required controls only)
//   - 3: Not found (occurrence data missing for a control)
//   - 4: Invalid configuration
//   - 5: Malformed findings
//   - 6: Interrupted
package exitcode

import (
	"fmt"
	"sync"

	"github.com/controlgate/controlgate/pkg/evaluate"
)

// Code represents a semantic exit code for CI/CD pipelines.
type Code int

const (
	// Pass indicates every required control stayed within its policy.
	Pass Code = 0
	// Fail indicates at least one required control exceeded a threshold.
	Fail Code = 1
	// NotRequired indicates thresholds were exceeded only on controls
	// the policy does not require.
	NotRequired Code = 2
	// NotFound indicates occurrence data was missing for a control.
	NotFound Code = 3
	// Configuration indicates an invalid policy or flag was provided.
	Configuration Code = 4
	// Malformed indicates a findings payload could not be classified.
	Malformed Code = 5
	// Interrupted indicates the run was interrupted (e.g., SIGINT).
	Interrupted Code = 6
)

// codeStrings maps exit codes to short machine-readable names.
var codeStrings = map[Code]string{
	Pass:          "pass",
	Fail:          "fail",
	NotRequired:   "not_required",
	NotFound:      "not_found",
	Configuration: "invalid_configuration",
	Malformed:     "malformed_findings",
	Interrupted:   "run_interrupted",
}

// codeDescriptions provides detailed descriptions for exit codes.
var codeDescriptions = map[Code]string{
	Pass:          "All required controls are within policy",
	Fail:          "One or more required controls exceeded a threshold",
	NotRequired:   "Thresholds exceeded only on non-required controls",
	NotFound:      "Occurrence data missing for one or more controls",
	Configuration: "Invalid configuration provided",
	Malformed:     "Findings payload could not be classified",
	Interrupted:   "Run was interrupted by user or signal",
}

// Manager tracks evaluation outcomes and determines the exit code for
// the run. It is safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	failed      int
	notRequired int
	notFound    int
	passed      int

	configError bool
	malformed   bool
	interrupted bool
}

// New creates an exit code manager.
func New() *Manager {
	return &Manager{}
}

// Record records the terminal state of one evaluated control.
func (m *Manager) Record(state evaluate.State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch state {
	case evaluate.StateFail:
		m.failed++
	case evaluate.StateNotRequired:
		m.notRequired++
	case evaluate.StateNotFound:
		m.notFound++
	case evaluate.StatePass:
		m.passed++
	}
}

// SetConfigError marks that a configuration error occurred.
func (m *Manager) SetConfigError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configError = true
}

// SetMalformed marks that a findings payload could not be classified.
func (m *Manager) SetMalformed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malformed = true
}

// SetInterrupted marks that the run was interrupted.
func (m *Manager) SetInterrupted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interrupted = true
}

// ExitCode returns the exit code for the run and a human-readable
// reason. When several outcomes apply, the most actionable one wins.
//
// Priority order (highest to lowest):
//  1. Interrupted
//  2. Configuration error
//  3. Malformed findings
//  4. Fail
//  5. Not found
//  6. Not required
//  7. Pass
func (m *Manager) ExitCode() (Code, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.interrupted {
		return Interrupted, codeDescriptions[Interrupted]
	}
	if m.configError {
		return Configuration, codeDescriptions[Configuration]
	}
	if m.malformed {
		return Malformed, codeDescriptions[Malformed]
	}
	if m.failed > 0 {
		return Fail, fmt.Sprintf("%s (count: %d)",
			codeDescriptions[Fail], m.failed)
	}
	if m.notFound > 0 {
		return NotFound, fmt.Sprintf("%s (count: %d)",
			codeDescriptions[NotFound], m.notFound)
	}
	if m.notRequired > 0 {
		return NotRequired, fmt.Sprintf("%s (count: %d)",
			codeDescriptions[NotRequired], m.notRequired)
	}
	return Pass, codeDescriptions[Pass]
}

// Stats returns the per-state counts recorded so far.
func (m *Manager) Stats() (passed, failed, notRequired, notFound int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passed, m.failed, m.notRequired, m.notFound
}

// Reset clears all recorded outcomes and state flags.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = 0
	m.notRequired = 0
	m.notFound = 0
	m.passed = 0
	m.configError = false
	m.malformed = false
	m.interrupted = false
}

// CodeString returns the short name of an exit code.
func CodeString(code Code) string {
	if s, ok := codeStrings[code]; ok {
		return s
	}
	return fmt.Sprintf("unknown_code_%d", code)
}

// CodeDescription returns a detailed description of an exit code.
func CodeDescription(code Code) string {
	if s, ok := codeDescriptions[code]; ok {
		return s
	}
	return fmt.Sprintf("Unknown exit code: %d", code)
}
