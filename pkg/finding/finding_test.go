package finding

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		record  Record
		want    Finding
		wantErr error
	}{
		{
			name: "full record",
			record: Record{
				Severity:      "critical",
				Identifier:    "CVE-2024-1234",
				WeaknessCodes: []string{"CWE-89"},
				Location:      "src/db.js",
			},
			want: Finding{
				Severity:      Critical,
				Identifier:    "CVE-2024-1234",
				WeaknessCodes: []string{"CWE-89"},
				Location:      "src/db.js",
			},
		},
		{
			name:   "uppercase severity normalized",
			record: Record{Severity: "HIGH", Identifier: "rule-1"},
			want:   Finding{Severity: High, Identifier: "rule-1"},
		},
		{
			name:   "minimal record",
			record: Record{Severity: "low"},
			want:   Finding{Severity: Low},
		},
		{
			name:    "missing severity rejected",
			record:  Record{Identifier: "CVE-2024-1"},
			wantErr: ErrMalformedFinding,
		},
		{
			name:    "unrecognized severity rejected",
			record:  Record{Severity: "blocker", Identifier: "CVE-2024-1"},
			wantErr: ErrMalformedFinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Classify(tt.record)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Classify() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify() unexpected error: %v", err)
			}
			if got.Severity != tt.want.Severity ||
				got.Identifier != tt.want.Identifier ||
				got.Location != tt.want.Location ||
				len(got.WeaknessCodes) != len(tt.want.WeaknessCodes) {
				t.Errorf("Classify() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClassifyCopiesWeaknessCodes(t *testing.T) {
	t.Parallel()

	codes := []string{"CWE-79"}
	f, err := Classify(Record{Severity: "high", WeaknessCodes: codes})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	codes[0] = "CWE-89"
	if f.WeaknessCodes[0] != "CWE-79" {
		t.Error("Finding shares weakness code slice with input record")
	}
}

func TestClassifyAll(t *testing.T) {
	t.Parallel()

	t.Run("preserves order", func(t *testing.T) {
		t.Parallel()
		findings, err := ClassifyAll([]Record{
			{Severity: "low", Identifier: "a"},
			{Severity: "critical", Identifier: "b"},
			{Severity: "medium", Identifier: "c"},
		})
		if err != nil {
			t.Fatalf("ClassifyAll: %v", err)
		}
		got := []string{findings[0].Identifier, findings[1].Identifier, findings[2].Identifier}
		want := []string{"a", "b", "c"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("pos %d: got %s, want %s", i, got[i], want[i])
			}
		}
	})

	t.Run("all or nothing", func(t *testing.T) {
		t.Parallel()
		_, err := ClassifyAll([]Record{
			{Severity: "low", Identifier: "ok"},
			{Severity: "", Identifier: "bad"},
		})
		if !errors.Is(err, ErrMalformedFinding) {
			t.Fatalf("ClassifyAll error = %v, want ErrMalformedFinding", err)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()
		findings, err := ClassifyAll(nil)
		if err != nil {
			t.Fatalf("ClassifyAll(nil): %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("ClassifyAll(nil) = %d findings, want 0", len(findings))
		}
	})
}

func TestMatchesException(t *testing.T) {
	t.Parallel()

	f := Finding{
		Severity:      Critical,
		Identifier:    "CVE-2024-1",
		WeaknessCodes: []string{"CWE-89", "CWE-564"},
	}

	tests := []struct {
		name       string
		exceptions map[string]bool
		want       bool
	}{
		{"identifier match", map[string]bool{"CVE-2024-1": true}, true},
		{"weakness match", map[string]bool{"CWE-564": true}, true},
		{"no match", map[string]bool{"CVE-2024-2": true}, false},
		{"empty set", nil, false},
		{"no prefix matching", map[string]bool{"CVE-2024": true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := f.MatchesException(tt.exceptions); got != tt.want {
				t.Errorf("MatchesException() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("missing identifier cannot match", func(t *testing.T) {
		t.Parallel()
		blank := Finding{Severity: Low}
		if blank.MatchesException(map[string]bool{"": true}) {
			t.Error("finding with no identifier matched blank exception entry")
		}
	})
}
