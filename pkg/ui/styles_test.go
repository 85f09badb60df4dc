package ui

import (
	"strings"
	"testing"
)

func TestRenderStateLabels(t *testing.T) {
	SetNoColor(true)

	tests := []struct {
		state string
		want  string
	}{
		{"pass", "[PASS]"},
		{"fail", "[FAIL]"},
		{"not_required", "[NOT REQUIRED]"},
		{"not_found", "[NOT FOUND]"},
		{"anything-else", "[ERROR]"},
	}
	for _, tt := range tests {
		if got := RenderState(tt.state); !strings.Contains(got, tt.want) {
			t.Errorf("RenderState(%q) = %q, want it to contain %q", tt.state, got, tt.want)
		}
	}
}

func TestRenderSeverityKeepsLabel(t *testing.T) {
	SetNoColor(true)

	for _, sev := range []string{"critical", "high", "medium", "low", "unknown"} {
		if got := RenderSeverity(sev); !strings.Contains(got, sev) {
			t.Errorf("RenderSeverity(%q) = %q, lost the label", sev, got)
		}
	}
}

func TestNoColorFlag(t *testing.T) {
	SetNoColor(true)
	if !IsNoColor() {
		t.Error("IsNoColor() = false after SetNoColor(true)")
	}
}
