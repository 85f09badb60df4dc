package hooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/controlgate/controlgate/pkg/defaults"
	"github.com/controlgate/controlgate/pkg/output/dispatcher"
	"github.com/controlgate/controlgate/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*OTelHook)(nil)

// OTelHook exports evaluation telemetry to an OpenTelemetry collector.
// It opens one root span per run and records each attestation as a span
// event, marking the run span failed when any required control fails.
type OTelHook struct {
	opts           OTelOptions
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	mu       sync.Mutex
	rootSpan trace.Span
	rootCtx  context.Context
	closed   bool
}

// OTelOptions configures the OpenTelemetry hook behavior.
type OTelOptions struct {
	// Endpoint is the OTLP endpoint (e.g., "localhost:4317").
	Endpoint string

	// ServiceName is the service name for traces (default: "controlgate").
	ServiceName string

	// Insecure uses an insecure connection (no TLS).
	Insecure bool

	// Headers contains additional headers for the OTLP exporter.
	Headers map[string]string

	// ShutdownTimeout is the timeout for graceful shutdown (default: 5s).
	ShutdownTimeout time.Duration
}

// NewOTelHook creates an OpenTelemetry hook exporting to the configured
// endpoint. Connection failures never block evaluation; the batch span
// processor drops telemetry it cannot deliver.
func NewOTelHook(opts OTelOptions) (*OTelHook, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "localhost:4317"
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}

	grpcOpts := []grpc.DialOption{}
	if opts.Insecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithDialOption(grpcOpts...),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	exporter, err := otlptracegrpc.New(context.Background(), exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating otlp exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)

	return &OTelHook{
		opts:           opts,
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer("controlgate/evaluate"),
	}, nil
}

// OnEvent exports telemetry for one event.
func (h *OTelHook) OnEvent(ctx context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	switch ev := event.(type) {
	case *events.StartEvent:
		h.handleStart(ctx, ev)
	case *events.AttestationEvent:
		h.handleAttestation(ev)
	case *events.ErrorEvent:
		h.handleError(ev)
	case *events.SummaryEvent:
		h.handleSummary(ev)
	}
	return nil
}

func (h *OTelHook) handleStart(ctx context.Context, ev *events.StartEvent) {
	h.rootCtx, h.rootSpan = h.tracer.Start(ctx, "controlgate.run",
		trace.WithAttributes(
			attribute.String("run_id", ev.RunID()),
			attribute.Int("controls", ev.Controls),
		),
	)
}

func (h *OTelHook) handleAttestation(ev *events.AttestationEvent) {
	if h.rootSpan == nil {
		return
	}
	h.rootSpan.AddEvent("attestation", trace.WithAttributes(
		attribute.String("control", ev.Control),
		attribute.String("state", ev.Result.State.String()),
		attribute.String("policy", ev.Result.PolicyName),
		attribute.Int("violations", len(ev.Result.Violating)),
	))
}

func (h *OTelHook) handleError(ev *events.ErrorEvent) {
	if h.rootSpan == nil {
		return
	}
	h.rootSpan.AddEvent("error", trace.WithAttributes(
		attribute.String("control", ev.Control),
		attribute.String("message", ev.Message),
	))
}

func (h *OTelHook) handleSummary(ev *events.SummaryEvent) {
	if h.rootSpan == nil {
		return
	}
	h.rootSpan.SetAttributes(
		attribute.Int("passed", ev.Totals.Passed),
		attribute.Int("failed", ev.Totals.Failed),
		attribute.Int("not_required", ev.Totals.NotRequired),
		attribute.Int("not_found", ev.Totals.NotFound),
		attribute.Int("errors", ev.Totals.Errors),
	)
	if ev.Totals.Failed > 0 || ev.Totals.Errors > 0 {
		h.rootSpan.SetStatus(codes.Error,
			fmt.Sprintf("%d failed, %d errors", ev.Totals.Failed, ev.Totals.Errors))
	} else {
		h.rootSpan.SetStatus(codes.Ok, "all controls within policy")
	}
	h.rootSpan.End()
	h.rootSpan = nil
}

// EventTypes returns nil: the hook receives every event.
func (h *OTelHook) EventTypes() []events.EventType { return nil }

// Close flushes pending spans and shuts down the tracer provider.
func (h *OTelHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	if h.rootSpan != nil {
		h.rootSpan.End()
		h.rootSpan = nil
	}
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), h.opts.ShutdownTimeout)
	defer cancel()
	return h.tracerProvider.Shutdown(ctx)
}
