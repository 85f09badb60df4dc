package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/controlgate/controlgate/pkg/finding"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		wantErr     error
		errContains string
		validate    func(t *testing.T, p *Policy)
	}{
		{
			name: "valid full policy",
			content: `
name: "sast-gate"
required: true
severities:
  critical:
    maximum: 0
    exceptions:
      - CWE-89
      - CVE-2024-1234
  high:
    maximum: 3
  medium:
    maximum: 10
location_exclusions:
  - "test/"
  - "vendor/"
`,
			validate: func(t *testing.T, p *Policy) {
				if p.Name != "sast-gate" {
					t.Errorf("Name = %q, want sast-gate", p.Name)
				}
				if !p.Required {
					t.Error("Required = false, want true")
				}
				if got := p.SeverityPolicyFor(finding.High).Maximum; got != 3 {
					t.Errorf("high maximum = %d, want 3", got)
				}
				if got := len(p.SeverityPolicyFor(finding.Critical).Exceptions); got != 2 {
					t.Errorf("critical exceptions = %d, want 2", got)
				}
				if got := len(p.LocationExclusions); got != 2 {
					t.Errorf("location exclusions = %d, want 2", got)
				}
			},
		},
		{
			name:    "empty policy is valid",
			content: `name: "empty"`,
			validate: func(t *testing.T, p *Policy) {
				for _, sev := range finding.Severities {
					sp := p.SeverityPolicyFor(sev)
					if sp.Maximum != 0 || len(sp.Exceptions) != 0 {
						t.Errorf("%s: default = %+v, want zero maximum and no exceptions", sev, sp)
					}
				}
			},
		},
		{
			name: "negative maximum rejected",
			content: `
severities:
  high:
    maximum: -1
`,
			wantErr: ErrInvalidPolicy,
		},
		{
			name: "unknown bucket rejected",
			content: `
severities:
  blocker:
    maximum: 5
`,
			wantErr: ErrInvalidPolicy,
		},
		{
			name: "blank exception rejected",
			content: `
severities:
  low:
    maximum: 2
    exceptions:
      - ""
`,
			wantErr: ErrInvalidPolicy,
		},
		{
			name: "blank exclusion rejected",
			content: `
location_exclusions:
  - "  "
`,
			wantErr: ErrInvalidPolicy,
		},
		{
			name:    "malformed yaml rejected",
			content: `severities: [not a map`,
			wantErr: ErrInvalidPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := Parse([]byte(tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrPolicyNotFound) {
			t.Fatalf("Load() error = %v, want ErrPolicyNotFound", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "policy.yaml")
		content := "name: disk\nrequired: true\nseverities:\n  critical:\n    maximum: 1\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		p, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if p.Name != "disk" || p.SeverityPolicyFor(finding.Critical).Maximum != 1 {
			t.Errorf("Load() = %+v", p)
		}
	})
}

func TestExceptionSet(t *testing.T) {
	t.Parallel()

	p := &Policy{
		Severities: map[finding.Severity]SeverityPolicy{
			finding.Critical: {Maximum: 0, Exceptions: []string{"CWE-89", "CVE-1"}},
		},
	}

	set := p.ExceptionSet(finding.Critical)
	if !set["CWE-89"] || !set["CVE-1"] {
		t.Errorf("ExceptionSet(critical) = %v, missing entries", set)
	}
	if p.ExceptionSet(finding.High) != nil {
		t.Error("ExceptionSet(high) should be nil for unmapped bucket")
	}
}
