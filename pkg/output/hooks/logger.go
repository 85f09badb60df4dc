// Package hooks provides dispatcher hooks for live integrations:
// structured logging, Prometheus metrics, and OpenTelemetry traces.
package hooks

import (
	"context"
	"log/slog"

	"github.com/controlgate/controlgate/pkg/evaluate"
	"github.com/controlgate/controlgate/pkg/output/dispatcher"
	"github.com/controlgate/controlgate/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*LoggerHook)(nil)

// LoggerHook logs evaluation events through slog. Attestations log at
// a level matching their outcome so a CI log at warn level still shows
// every failing control.
type LoggerHook struct {
	logger *slog.Logger
}

// NewLoggerHook creates a logger hook. A nil logger uses slog.Default().
func NewLoggerHook(logger *slog.Logger) *LoggerHook {
	return &LoggerHook{logger: orDefault(logger)}
}

// orDefault returns l if non-nil, otherwise slog.Default().
func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// OnEvent logs one event.
func (h *LoggerHook) OnEvent(ctx context.Context, event events.Event) error {
	switch ev := event.(type) {
	case *events.StartEvent:
		h.logger.LogAttrs(ctx, slog.LevelInfo, "evaluation run started",
			slog.String("run_id", ev.RunID()),
			slog.Int("controls", ev.Controls),
		)
	case *events.AttestationEvent:
		level := slog.LevelInfo
		if ev.Result.State == evaluate.StateFail {
			level = slog.LevelWarn
		}
		h.logger.LogAttrs(ctx, level, "control evaluated",
			slog.String("run_id", ev.RunID()),
			slog.String("control", ev.Control),
			slog.String("state", ev.Result.State.String()),
			slog.String("policy", ev.Result.PolicyName),
			slog.Int("violations", len(ev.Result.Violating)),
		)
	case *events.ErrorEvent:
		h.logger.LogAttrs(ctx, slog.LevelError, "control evaluation failed",
			slog.String("run_id", ev.RunID()),
			slog.String("control", ev.Control),
			slog.String("error", ev.Message),
		)
	case *events.SummaryEvent:
		h.logger.LogAttrs(ctx, slog.LevelInfo, "evaluation run finished",
			slog.String("run_id", ev.RunID()),
			slog.Int("controls", ev.Totals.Controls),
			slog.Int("passed", ev.Totals.Passed),
			slog.Int("failed", ev.Totals.Failed),
			slog.Int("not_required", ev.Totals.NotRequired),
			slog.Int("not_found", ev.Totals.NotFound),
			slog.Int("errors", ev.Totals.Errors),
			slog.Duration("duration", ev.Duration),
		)
	}
	return nil
}

// EventTypes returns nil: the logger receives every event.
func (h *LoggerHook) EventTypes() []events.EventType { return nil }
