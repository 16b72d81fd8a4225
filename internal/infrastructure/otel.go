package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	ServiceName    = "golf-coaching-reports"
	ServiceVersion = "v1.2.0"
	MeterName      = "golfpulse"
)

// OTelConfig selects which telemetry signals a run emits and where they
// go. A report run is a short-lived process, so the only trace sink that
// makes sense out of the box is stdout; metrics go to a Prometheus
// registry scraped while the run is alive.
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout" or "none"
	MetricExporter string // "prometheus" or "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
	PrometheusPort string
}

// OTelProviders bundles the live telemetry handles for one process.
// Fields stay nil for signals the configuration disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns the configuration used when the entrypoint
// does not override anything: full sampling, Prometheus metrics, traces
// pretty-printed to stdout.
func DefaultOTelConfig() *OTelConfig {
	env := os.Getenv("GOLF_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: ServiceVersion,
		Environment:    env,
		TraceExporter:  "stdout",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
		EnableTracing:  true,
		SampleRatio:    1.0,
		PrometheusPort: "9090",
	}
}

// InitializeOTel builds tracer and meter providers per the given
// configuration and installs them as the OTel globals.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}

	ctx := context.Background()
	res := newResource(cfg)
	providers := &OTelProviders{Logger: logger}

	if cfg.EnableTracing && cfg.TraceExporter != "none" {
		tp, err := newTracerProvider(cfg, res)
		if err != nil {
			return nil, fmt.Errorf("tracing setup: %w", err)
		}
		providers.TracerProvider = tp
		providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
		otel.SetTracerProvider(tp)
	}

	if cfg.EnableMetrics && cfg.MetricExporter != "none" {
		if err := setupMetrics(cfg, res, providers); err != nil {
			return nil, fmt.Errorf("metrics setup: %w", err)
		}
	}

	// Span context should survive any future hop to another process.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.InfoContext(ctx, "Telemetry configured",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing", providers.TracerProvider != nil),
		slog.Bool("metrics", providers.MeterProvider != nil))

	return providers, nil
}

// newResource describes this process to every exporter. The instance id
// keeps overlapping runs on the same host apart.
func newResource(cfg *OTelConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	)
}

func newTracerProvider(cfg *OTelConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	if cfg.TraceExporter != "stdout" {
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("building stdout exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	), nil
}

// setupMetrics wires a Prometheus reader into the meter provider. The
// scrape handler lands on the default registry; the cmd layer serves it
// when a metrics address is configured.
func setupMetrics(cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	if cfg.MetricExporter != "prometheus" {
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("building prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	providers.PrometheusHTTP = promhttp.Handler()
	otel.SetMeterProvider(mp)

	return nil
}

// Shutdown flushes and stops whichever providers were started.
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		errs = append(errs, p.TracerProvider.Shutdown(ctx))
	}
	if p.MeterProvider != nil {
		errs = append(errs, p.MeterProvider.Shutdown(ctx))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("telemetry shutdown: %w", err)
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext returns the trace id of the span active in ctx, or
// "" when no valid span is recording. The log handler uses it so lines
// emitted inside a span correlate with the exported trace.
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	// Ingest metrics
	ingestFilesTotal, err := meter.Int64Counter(
		"ingest_files_total",
		metric.WithDescription("Total number of launch monitor exports ingested"),
	)
	if err != nil {
		return nil, err
	}

	ingestRowsTotal, err := meter.Int64Counter(
		"ingest_rows_total",
		metric.WithDescription("Total number of shot rows accepted during ingest"),
	)
	if err != nil {
		return nil, err
	}

	ingestRowsSkipped, err := meter.Int64Counter(
		"ingest_rows_skipped_total",
		metric.WithDescription("Total number of shot rows rejected during ingest"),
	)
	if err != nil {
		return nil, err
	}

	ingestDuration, err := meter.Float64Histogram(
		"ingest_duration_seconds",
		metric.WithDescription("Ingest duration per upload in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	// Base store metrics
	baseMergesTotal, err := meter.Int64Counter(
		"base_merges_total",
		metric.WithDescription("Total number of base store merges"),
	)
	if err != nil {
		return nil, err
	}

	baseShots, err := meter.Int64UpDownCounter(
		"base_shots",
		metric.WithDescription("Number of shots currently held in the base store"),
	)
	if err != nil {
		return nil, err
	}

	// Run metrics
	runExecutionsTotal, err := meter.Int64Counter(
		"run_executions_total",
		metric.WithDescription("Total number of report run executions"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"run_duration_seconds",
		metric.WithDescription("Report run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	runModelsTotal, err := meter.Int64Counter(
		"run_models_total",
		metric.WithDescription("Total number of model records built"),
	)
	if err != nil {
		return nil, err
	}

	runModelDuration, err := meter.Float64Histogram(
		"run_model_duration_seconds",
		metric.WithDescription("Model record build duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	runActiveRuns, err := meter.Int64UpDownCounter(
		"run_active_runs",
		metric.WithDescription("Number of report runs currently executing"),
	)
	if err != nil {
		return nil, err
	}

	runErrors, err := meter.Int64Counter(
		"run_errors_total",
		metric.WithDescription("Total number of report run errors"),
	)
	if err != nil {
		return nil, err
	}

	// Gapping metrics
	gappingSessionsTotal, err := meter.Int64Counter(
		"gapping_sessions_total",
		metric.WithDescription("Total number of gapping computations by outcome"),
	)
	if err != nil {
		return nil, err
	}

	// Export metrics
	exportArtifactsTotal, err := meter.Int64Counter(
		"export_artifacts_total",
		metric.WithDescription("Total number of report artifacts written"),
	)
	if err != nil {
		return nil, err
	}

	exportDuration, err := meter.Float64Histogram(
		"export_duration_seconds",
		metric.WithDescription("Export duration per run in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	// System metrics
	systemErrors, err := meter.Int64Counter(
		"system_errors_total",
		metric.WithDescription("Total number of internal errors outside run scope"),
	)
	if err != nil {
		return nil, err
	}

	systemUptime, err := meter.Float64UpDownCounter(
		"system_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		// Ingest metrics
		IngestFilesTotal:  ingestFilesTotal,
		IngestRowsTotal:   ingestRowsTotal,
		IngestRowsSkipped: ingestRowsSkipped,
		IngestDuration:    ingestDuration,

		// Base store metrics
		BaseMergesTotal: baseMergesTotal,
		BaseShots:       baseShots,

		// Run metrics
		RunExecutionsTotal: runExecutionsTotal,
		RunDuration:        runDuration,
		RunModelsTotal:     runModelsTotal,
		RunModelDuration:   runModelDuration,
		RunActiveRuns:      runActiveRuns,
		RunErrors:          runErrors,

		// Gapping metrics
		GappingSessionsTotal: gappingSessionsTotal,

		// Export metrics
		ExportArtifactsTotal: exportArtifactsTotal,
		ExportDuration:       exportDuration,

		// System metrics
		SystemErrors: systemErrors,
		SystemUptime: systemUptime,
	}, nil
}

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// Ingest metrics
	IngestFilesTotal  metric.Int64Counter
	IngestRowsTotal   metric.Int64Counter
	IngestRowsSkipped metric.Int64Counter
	IngestDuration    metric.Float64Histogram

	// Base store metrics
	BaseMergesTotal metric.Int64Counter
	BaseShots       metric.Int64UpDownCounter

	// Run metrics
	RunExecutionsTotal metric.Int64Counter
	RunDuration        metric.Float64Histogram
	RunModelsTotal     metric.Int64Counter
	RunModelDuration   metric.Float64Histogram
	RunActiveRuns      metric.Int64UpDownCounter
	RunErrors          metric.Int64Counter

	// Gapping metrics
	GappingSessionsTotal metric.Int64Counter

	// Export metrics
	ExportArtifactsTotal metric.Int64Counter
	ExportDuration       metric.Float64Histogram

	// System metrics
	SystemErrors metric.Int64Counter
	SystemUptime metric.Float64UpDownCounter
}

// RecordIngestMetrics records metrics for a single upload ingest
func RecordIngestMetrics(ctx context.Context, metrics *BusinessMetrics, source string, rows, skipped int64, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ingest.source", source),
	}

	statusAttr := attribute.String("status", "success")
	if err != nil {
		statusAttr = attribute.String("status", "failure")
	}

	metrics.IngestFilesTotal.Add(ctx, 1, metric.WithAttributes(append(attrs, statusAttr)...))
	metrics.IngestRowsTotal.Add(ctx, rows, metric.WithAttributes(attrs...))
	if skipped > 0 {
		metrics.IngestRowsSkipped.Add(ctx, skipped, metric.WithAttributes(attrs...))
	}
	metrics.IngestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordBaseMerge records a base store merge and the resulting size change
func RecordBaseMerge(ctx context.Context, metrics *BusinessMetrics, added, replaced int64) {
	if metrics == nil {
		return
	}

	metrics.BaseMergesTotal.Add(ctx, 1)
	if added != 0 {
		metrics.BaseShots.Add(ctx, added)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("base.merged",
			trace.WithAttributes(
				attribute.Int64("shots.added", added),
				attribute.Int64("shots.replaced", replaced),
			),
		)
	}
}

// RecordRunMetrics records metrics for a report run execution
func RecordRunMetrics(ctx context.Context, metrics *BusinessMetrics, runID string, duration time.Duration, success bool, err error) {
	if metrics == nil {
		return
	}

	// Common attributes
	attrs := []attribute.KeyValue{
		attribute.String("run.id", runID),
	}

	// Record execution
	metrics.RunExecutionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	// Record duration
	statusAttr := attribute.String("status", "success")
	if !success {
		statusAttr = attribute.String("status", "failure")
	}
	durationAttrs := append(attrs, statusAttr)
	metrics.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(durationAttrs...))

	// Record errors
	if err != nil {
		errorAttrs := append(attrs, attribute.String("error.type", fmt.Sprintf("%T", err)))
		metrics.RunErrors.Add(ctx, 1, metric.WithAttributes(errorAttrs...))
	}

	// Add span event
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("run.metrics_recorded",
			trace.WithAttributes(
				attribute.String("run.id", runID),
				attribute.Bool("success", success),
				attribute.Float64("duration_seconds", duration.Seconds()),
			),
		)
	}
}

// RecordModelMetrics records metrics for a single model record build
func RecordModelMetrics(ctx context.Context, metrics *BusinessMetrics, runID, model, scope string, duration time.Duration, success bool) {
	if metrics == nil {
		return
	}

	// Common attributes
	attrs := []attribute.KeyValue{
		attribute.String("run.id", runID),
		attribute.String("model.name", model),
		attribute.String("model.scope", scope),
	}

	// Record model build
	metrics.RunModelsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	// Record duration
	statusAttr := attribute.String("status", "success")
	if !success {
		statusAttr = attribute.String("status", "failure")
	}
	durationAttrs := append(attrs, statusAttr)
	metrics.RunModelDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(durationAttrs...))
}

// RecordActiveRunChange records changes in active run count
func RecordActiveRunChange(ctx context.Context, metrics *BusinessMetrics, delta int64) {
	if metrics == nil {
		return
	}

	metrics.RunActiveRuns.Add(ctx, delta)
}

// RecordGappingOutcome records a gapping computation outcome
func RecordGappingOutcome(ctx context.Context, metrics *BusinessMetrics, player, status string) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("player.alias", player),
		attribute.String("status", status),
	}

	metrics.GappingSessionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExportMetrics records metrics for written report artifacts
func RecordExportMetrics(ctx context.Context, metrics *BusinessMetrics, kind string, artifacts int64, duration time.Duration) {
	if metrics == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("artifact.kind", kind),
	}

	metrics.ExportArtifactsTotal.Add(ctx, artifacts, metric.WithAttributes(attrs...))
	metrics.ExportDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
