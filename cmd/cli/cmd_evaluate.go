package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/controlgate/controlgate/pkg/defaults"
	"github.com/controlgate/controlgate/pkg/evaluate"
	"github.com/controlgate/controlgate/pkg/finding"
	"github.com/controlgate/controlgate/pkg/ingest"
	"github.com/controlgate/controlgate/pkg/output/dispatcher"
	"github.com/controlgate/controlgate/pkg/output/exitcode"
	"github.com/controlgate/controlgate/pkg/output/hooks"
	"github.com/controlgate/controlgate/pkg/output/writers"
	"github.com/controlgate/controlgate/pkg/policy"
	"github.com/controlgate/controlgate/pkg/runner"
	"github.com/controlgate/controlgate/pkg/ui"
)

func runEvaluate() {
	flags := flag.NewFlagSet("evaluate", flag.ExitOnError)
	policyPath := flags.String("policy", "", "Policy YAML file (required)")
	format := flags.String("format", "auto", "Findings format: auto, occurrence, sarif")
	outputFormat := flags.String("output", "table", "Stdout format: table, jsonl, csv, summary")
	jsonlOut := flags.String("jsonl-out", "", "Also write JSONL events to this file")
	sarifOut := flags.String("sarif-out", "", "Also write a SARIF report of violating findings to this file")
	templatePath := flags.String("template", "", "Render output through a custom text template file")
	concurrency := flags.Int("concurrency", defaults.ConcurrencyDefault, "Parallel evaluations")
	noColor := flags.Bool("no-color", false, "Disable colored output")
	verbose := flags.Bool("verbose", false, "Log every evaluation, not just failures")
	metricsPort := flags.Int("metrics-port", 0, "Expose Prometheus metrics on this port (0 disables)")
	otelEndpoint := flags.String("otel-endpoint", "", "Export traces to this OTLP gRPC endpoint (empty disables)")
	otelInsecure := flags.Bool("otel-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: %s evaluate [flags] <control>=<findings-file> ...\n\n", defaults.ToolName)
		fmt.Fprintf(flags.Output(), "Bare file arguments use the file name (without extension) as the control name.\n\nFlags:\n")
		flags.PrintDefaults()
	}
	flags.Parse(os.Args[2:])

	if *noColor {
		ui.SetNoColor(true)
	}

	mgr := exitcode.New()
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, msg)
		mgr.SetConfigError()
		code, reason := mgr.ExitCode()
		fmt.Fprintf(os.Stderr, "%s: %s\n", exitcode.CodeString(code), reason)
		os.Exit(int(code))
	}

	if *policyPath == "" {
		fail("evaluate: -policy is required")
	}
	if flags.NArg() == 0 {
		fail("evaluate: at least one findings file is required")
	}

	pol, err := policy.Load(*policyPath)
	if err != nil {
		fail(fmt.Sprintf("evaluate: %v", err))
	}

	ingestFormat, err := parseFormat(*format)
	if err != nil {
		fail(fmt.Sprintf("evaluate: %v", err))
	}

	controls := make([]runner.Control, 0, flags.NArg())
	for _, arg := range flags.Args() {
		name, path := splitControlArg(arg)
		controls = append(controls, runner.Control{
			Name:   name,
			Policy: pol,
			Load: func(context.Context) (evaluate.Input, error) {
				return ingest.ParseFile(path, ingestFormat)
			},
		})
	}

	disp := dispatcher.New()
	var closers []io.Closer

	if err := registerStdoutWriter(disp, *outputFormat, *templatePath); err != nil {
		fail(fmt.Sprintf("evaluate: %v", err))
	}
	if *jsonlOut != "" {
		f, err := os.Create(*jsonlOut)
		if err != nil {
			fail(fmt.Sprintf("evaluate: %v", err))
		}
		closers = append(closers, f)
		disp.RegisterWriter(writers.NewJSONLWriter(f, writers.JSONLOptions{}))
	}
	if *sarifOut != "" {
		f, err := os.Create(*sarifOut)
		if err != nil {
			fail(fmt.Sprintf("evaluate: %v", err))
		}
		closers = append(closers, f)
		disp.RegisterWriter(writers.NewSARIFWriter(f, writers.SARIFOptions{}))
	}

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	disp.RegisterHook(hooks.NewLoggerHook(logger))

	if *metricsPort > 0 {
		promHook, err := hooks.NewPrometheusHook(hooks.PrometheusOptions{Port: *metricsPort})
		if err != nil {
			fail(fmt.Sprintf("evaluate: %v", err))
		}
		closers = append(closers, promHook)
		disp.RegisterHook(promHook)
	}
	if *otelEndpoint != "" {
		otelHook, err := hooks.NewOTelHook(hooks.OTelOptions{
			Endpoint: *otelEndpoint,
			Insecure: *otelInsecure,
		})
		if err != nil {
			fail(fmt.Sprintf("evaluate: %v", err))
		}
		closers = append(closers, otelHook)
		disp.RegisterHook(otelHook)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New()
	r.Concurrency = *concurrency
	r.Events = disp

	outcomes, runErr := r.Run(ctx, controls)
	if errors.Is(runErr, runner.ErrInterrupted) {
		mgr.SetInterrupted()
	}

	for _, oc := range outcomes {
		if oc.Err != nil {
			recordControlError(mgr, oc.Err)
			continue
		}
		mgr.Record(oc.Result.State)
	}

	_ = disp.Flush()
	_ = disp.Close()
	for _, c := range closers {
		_ = c.Close()
	}

	code, reason := mgr.ExitCode()
	if code != exitcode.Pass {
		fmt.Fprintf(os.Stderr, "%s: %s\n", exitcode.CodeString(code), reason)
	}
	os.Exit(int(code))
}

// recordControlError maps a per-control load error to an exit state.
// Unreadable payloads are a data problem; everything else (missing
// files, bad paths) is a configuration problem.
func recordControlError(mgr *exitcode.Manager, err error) {
	switch {
	case errors.Is(err, finding.ErrMalformedFinding),
		errors.Is(err, finding.ErrUnknownSeverity),
		errors.Is(err, ingest.ErrInvalidPayload):
		mgr.SetMalformed()
	default:
		mgr.SetConfigError()
	}
}

func parseFormat(s string) (ingest.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return ingest.FormatAuto, nil
	case "occurrence":
		return ingest.FormatOccurrence, nil
	case "sarif":
		return ingest.FormatSARIF, nil
	}
	return ingest.FormatAuto, fmt.Errorf("unknown findings format %q", s)
}

// splitControlArg splits "name=path" into its parts. A bare path uses
// the file name without extension as the control name.
func splitControlArg(arg string) (name, path string) {
	if i := strings.IndexByte(arg, '='); i > 0 {
		return arg[:i], arg[i+1:]
	}
	base := filepath.Base(arg)
	return strings.TrimSuffix(base, filepath.Ext(base)), arg
}

// registerStdoutWriter wires the writer for the selected stdout format.
func registerStdoutWriter(disp *dispatcher.Dispatcher, format, templatePath string) error {
	if templatePath != "" {
		tw, err := writers.NewTemplateWriter(os.Stdout, writers.TemplateConfig{TemplatePath: templatePath})
		if err != nil {
			return err
		}
		disp.RegisterWriter(tw)
		return nil
	}

	switch strings.ToLower(format) {
	case "table", "":
		disp.RegisterWriter(writers.NewTableWriter(os.Stdout))
	case "jsonl":
		disp.RegisterWriter(writers.NewJSONLWriter(os.Stdout, writers.JSONLOptions{}))
	case "csv":
		tw, err := writers.NewTemplateWriter(os.Stdout, writers.TemplateConfig{BuiltIn: "csv"})
		if err != nil {
			return err
		}
		disp.RegisterWriter(tw)
	case "summary":
		tw, err := writers.NewTemplateWriter(os.Stdout, writers.TemplateConfig{BuiltIn: "text-summary"})
		if err != nil {
			return err
		}
		disp.RegisterWriter(tw)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
