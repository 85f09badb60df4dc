// Package ui renders attestation states and severities for terminals:
// colored status lines in the manner of the CI shell scripts this tool
// replaces, with NO_COLOR and non-TTY handling.
package ui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Severity colors (matching OWASP/Nuclei standards).
var (
	Critical = lipgloss.Color("#FF0000") // Bright red
	High     = lipgloss.Color("#FF6B6B") // Red/Orange
	Medium   = lipgloss.Color("#FFD93D") // Yellow
	Low      = lipgloss.Color("#6BCB77") // Green
)

// Attestation state colors.
var (
	Pass        = lipgloss.Color("#00D26A") // Green
	Fail        = lipgloss.Color("#FF3838") // Red
	NotRequired = lipgloss.Color("#4D96FF") // Blue - informational
	NotFound    = lipgloss.Color("#6B7280") // Gray - no data
	Errored     = lipgloss.Color("#FFB800") // Amber
)

// Pre-configured styles.
var (
	CriticalStyle = lipgloss.NewStyle().Foreground(Critical).Bold(true)
	HighStyle     = lipgloss.NewStyle().Foreground(High)
	MediumStyle   = lipgloss.NewStyle().Foreground(Medium)
	LowStyle      = lipgloss.NewStyle().Foreground(Low)

	PassStyle        = lipgloss.NewStyle().Foreground(Pass).Bold(true)
	FailStyle        = lipgloss.NewStyle().Foreground(Fail).Bold(true)
	NotRequiredStyle = lipgloss.NewStyle().Foreground(NotRequired)
	NotFoundStyle    = lipgloss.NewStyle().Foreground(NotFound)
	ErrorStyle       = lipgloss.NewStyle().Foreground(Errored).Bold(true)

	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Global UI state.
var (
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetNoColor disables colored output.
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled.
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// AutoDetectColor disables color when NO_COLOR is set or stdout is not
// a terminal. Call once at startup, before any rendering.
func AutoDetectColor() {
	if os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stdout.Fd())) {
		SetNoColor(true)
	}
}

// RenderSeverity returns a colorized severity label.
func RenderSeverity(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return CriticalStyle.Render(severity)
	case "high":
		return HighStyle.Render(severity)
	case "medium":
		return MediumStyle.Render(severity)
	case "low":
		return LowStyle.Render(severity)
	default:
		return MutedStyle.Render(severity)
	}
}

// RenderState returns a fixed-width colorized state marker for status
// lines: [PASS], [FAIL], [NOT REQUIRED], [NOT FOUND], [ERROR].
func RenderState(state string) string {
	switch strings.ToLower(state) {
	case "pass":
		return PassStyle.Render("[PASS]")
	case "fail":
		return FailStyle.Render("[FAIL]")
	case "not_required":
		return NotRequiredStyle.Render("[NOT REQUIRED]")
	case "not_found":
		return NotFoundStyle.Render("[NOT FOUND]")
	default:
		return ErrorStyle.Render("[ERROR]")
	}
}
