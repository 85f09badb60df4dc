package hooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/controlgate/controlgate/pkg/defaults"
	"github.com/controlgate/controlgate/pkg/output/dispatcher"
	"github.com/controlgate/controlgate/pkg/output/events"
)

// Compile-time interface check.
var _ dispatcher.Hook = (*PrometheusHook)(nil)

// PrometheusHook exposes evaluation metrics for Prometheus scraping.
// It starts an HTTP server serving metrics at the configured path and
// records attestation counts by state and violation counts by severity.
type PrometheusHook struct {
	server   *http.Server
	registry *prometheus.Registry
	opts     PrometheusOptions

	attestationsTotal *prometheus.CounterVec
	violationsTotal   *prometheus.CounterVec
	errorsTotal       prometheus.Counter
	runDurationSec    prometheus.Gauge
	passRatio         prometheus.Gauge

	mu     sync.Mutex
	closed bool
}

// PrometheusOptions configures the Prometheus hook behavior.
type PrometheusOptions struct {
	// Port for the metrics server (default: 9090).
	Port int

	// Path for the metrics endpoint (default: "/metrics").
	Path string

	// ReadTimeout for the HTTP server (default: 5s).
	ReadTimeout time.Duration

	// WriteTimeout for the HTTP server (default: 10s).
	WriteTimeout time.Duration
}

// NewPrometheusHook creates a Prometheus hook. The metrics server
// starts immediately and runs until Close() is called.
func NewPrometheusHook(opts PrometheusOptions) (*PrometheusHook, error) {
	if opts.Port == 0 {
		opts.Port = defaults.MetricsPort
	}
	if opts.Path == "" {
		opts.Path = defaults.MetricsPath
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	// Custom registry keeps the default registry clean.
	registry := prometheus.NewRegistry()
	hook := &PrometheusHook{registry: registry, opts: opts}
	if err := hook.initMetrics(); err != nil {
		return nil, fmt.Errorf("initializing metrics: %w", err)
	}
	if err := hook.startServer(); err != nil {
		return nil, fmt.Errorf("starting metrics server: %w", err)
	}
	return hook, nil
}

func (h *PrometheusHook) initMetrics() error {
	h.attestationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controlgate_attestations_total",
			Help: "Control evaluations by terminal state",
		},
		[]string{"state", "policy"},
	)
	h.violationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "controlgate_violations_total",
			Help: "Violating findings by severity",
		},
		[]string{"severity", "policy"},
	)
	h.errorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "controlgate_errors_total",
		Help: "Controls that could not be evaluated",
	})
	h.runDurationSec = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "controlgate_run_duration_seconds",
		Help: "Duration of the last evaluation run",
	})
	h.passRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "controlgate_pass_ratio",
		Help: "Fraction of controls that passed in the last run (0-1)",
	})

	for _, c := range []prometheus.Collector{
		h.attestationsTotal, h.violationsTotal, h.errorsTotal,
		h.runDurationSec, h.passRatio,
	} {
		if err := h.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (h *PrometheusHook) startServer() error {
	mux := http.NewServeMux()
	mux.Handle(h.opts.Path, promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))

	h.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", h.opts.Port),
		Handler:      mux,
		ReadTimeout:  h.opts.ReadTimeout,
		WriteTimeout: h.opts.WriteTimeout,
	}

	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// The scrape endpoint is best-effort; evaluation continues.
			return
		}
	}()
	return nil
}

// OnEvent records metrics for one event.
func (h *PrometheusHook) OnEvent(_ context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	switch ev := event.(type) {
	case *events.AttestationEvent:
		h.attestationsTotal.WithLabelValues(
			ev.Result.State.String(), ev.Result.PolicyName).Inc()
		for _, f := range ev.Result.Violating {
			h.violationsTotal.WithLabelValues(
				f.Severity.String(), ev.Result.PolicyName).Inc()
		}
	case *events.ErrorEvent:
		h.errorsTotal.Inc()
	case *events.SummaryEvent:
		h.runDurationSec.Set(ev.Duration.Seconds())
		if ev.Totals.Controls > 0 {
			h.passRatio.Set(float64(ev.Totals.Passed) / float64(ev.Totals.Controls))
		}
	}
	return nil
}

// EventTypes returns the event types this hook handles.
func (h *PrometheusHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeAttestation,
		events.EventTypeError,
		events.EventTypeSummary,
	}
}

// Close shuts down the metrics server.
func (h *PrometheusHook) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.server.Shutdown(ctx)
}
