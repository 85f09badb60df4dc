package exitcode

import (
	"sync"
	"testing"

	"github.com/controlgate/controlgate/pkg/evaluate"
)

func TestExitCodePriority(t *testing.T) {
	tests := []struct {
		name     string
		states   []evaluate.State
		setup    func(m *Manager)
		wantCode Code
	}{
		{
			name:     "all pass",
			states:   []evaluate.State{evaluate.StatePass, evaluate.StatePass},
			wantCode: Pass,
		},
		{
			name:     "no controls at all is a pass",
			states:   nil,
			wantCode: Pass,
		},
		{
			name:     "fail beats pass",
			states:   []evaluate.State{evaluate.StatePass, evaluate.StateFail},
			wantCode: Fail,
		},
		{
			name:     "fail beats not found",
			states:   []evaluate.State{evaluate.StateNotFound, evaluate.StateFail},
			wantCode: Fail,
		},
		{
			name:     "not found beats not required",
			states:   []evaluate.State{evaluate.StateNotRequired, evaluate.StateNotFound},
			wantCode: NotFound,
		},
		{
			name:     "not required beats pass",
			states:   []evaluate.State{evaluate.StatePass, evaluate.StateNotRequired},
			wantCode: NotRequired,
		},
		{
			name:     "interrupted beats everything",
			states:   []evaluate.State{evaluate.StateFail},
			setup:    func(m *Manager) { m.SetInterrupted(); m.SetConfigError() },
			wantCode: Interrupted,
		},
		{
			name:     "config error beats malformed",
			states:   []evaluate.State{evaluate.StatePass},
			setup:    func(m *Manager) { m.SetConfigError(); m.SetMalformed() },
			wantCode: Configuration,
		},
		{
			name:     "malformed beats fail",
			states:   []evaluate.State{evaluate.StateFail},
			setup:    func(m *Manager) { m.SetMalformed() },
			wantCode: Malformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			for _, s := range tt.states {
				m.Record(s)
			}
			if tt.setup != nil {
				tt.setup(m)
			}
			code, reason := m.ExitCode()
			if code != tt.wantCode {
				t.Errorf("ExitCode() = %d (%s), want %d", code, reason, tt.wantCode)
			}
			if reason == "" {
				t.Error("expected non-empty reason")
			}
		})
	}
}

func TestStats(t *testing.T) {
	m := New()
	m.Record(evaluate.StatePass)
	m.Record(evaluate.StatePass)
	m.Record(evaluate.StateFail)
	m.Record(evaluate.StateNotRequired)
	m.Record(evaluate.StateNotFound)

	passed, failed, notRequired, notFound := m.Stats()
	if passed != 2 || failed != 1 || notRequired != 1 || notFound != 1 {
		t.Errorf("Stats() = %d,%d,%d,%d, want 2,1,1,1",
			passed, failed, notRequired, notFound)
	}
}

func TestReset(t *testing.T) {
	m := New()
	m.Record(evaluate.StateFail)
	m.SetInterrupted()
	m.Reset()

	code, _ := m.ExitCode()
	if code != Pass {
		t.Errorf("expected Pass after Reset, got %d", code)
	}
}

func TestConcurrentRecord(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Record(evaluate.StateFail)
		}()
	}
	wg.Wait()

	_, failed, _, _ := m.Stats()
	if failed != 50 {
		t.Errorf("expected 50 failures, got %d", failed)
	}
}

func TestCodeString(t *testing.T) {
	if got := CodeString(Fail); got != "fail" {
		t.Errorf("CodeString(Fail) = %q, want %q", got, "fail")
	}
	if got := CodeString(Code(99)); got != "unknown_code_99" {
		t.Errorf("CodeString(99) = %q", got)
	}
	if CodeDescription(NotFound) == "" {
		t.Error("expected description for NotFound")
	}
}
