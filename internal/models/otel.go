package models

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"golfpulse/internal/infrastructure"
	"golfpulse/pkg/contracts/domain"
)

// TracerName is the instrumentation name for assembly run tracing
const TracerName = "golfpulse.models"

// RunTracer provides OpenTelemetry tracing and metrics for assembly
// runs. A nil tracer is safe to call; every method degrades to a no-op
// span so the assembler never branches on instrumentation.
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
}

// NewRunTracer creates a run tracer from initialized providers. When
// tracing or metrics are disabled on the providers, the corresponding
// instruments come from the global otel registry, which is a no-op
// until a provider is installed.
func NewRunTracer(providers *infrastructure.OTelProviders) (*RunTracer, error) {
	if providers == nil {
		return nil, fmt.Errorf("otel providers not initialized")
	}
	tracer := providers.Tracer
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	meter := providers.Meter
	if meter == nil {
		meter = otel.Meter(TracerName)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return &RunTracer{
		tracer:  tracer,
		metrics: metrics,
	}, nil
}

// StartRun opens the root span of an assembly run and bumps the active
// run gauge.
func (t *RunTracer) StartRun(ctx context.Context, runID string, dateCount int) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("models.run %s", runID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.session_dates", dateCount),
		),
	)
	infrastructure.RecordActiveRunChange(ctx, t.metrics, 1)
	return ctx, span
}

// FinishRun closes the run span and flushes the run metrics.
func (t *RunTracer) FinishRun(ctx context.Context, span trace.Span, runID string, duration time.Duration, records int, err error) {
	if t == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("run.records", records),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
	)
	infrastructure.RecordActiveRunChange(ctx, t.metrics, -1)
	infrastructure.RecordRunMetrics(ctx, t.metrics, runID, duration, err == nil, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// StartSession opens a span for one player's session assembly. The
// group pass uses the group marker as owner.
func (t *RunTracer) StartSession(ctx context.Context, owner string, date time.Time) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, fmt.Sprintf("models.session %s", owner),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("session.owner", owner),
			attribute.String("session.date", domain.DateKey(date)),
		),
	)
}

// FinishSession closes a session span.
func (t *RunTracer) FinishSession(span trace.Span, records int, degraded bool) {
	if t == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("session.records", records),
		attribute.Bool("session.degraded", degraded),
	)
	span.SetStatus(codes.Ok, "")
	span.End()
}

// RecordModel flushes the metrics of one model build.
func (t *RunTracer) RecordModel(ctx context.Context, runID string, model domain.ModelLetter, scope domain.ModelScope, duration time.Duration, success bool) {
	if t == nil {
		return
	}
	infrastructure.RecordModelMetrics(ctx, t.metrics, runID, string(model), string(scope), duration, success)
}

// RecordGapping counts one player's gapping outcome.
func (t *RunTracer) RecordGapping(ctx context.Context, player string, status domain.RecordStatus) {
	if t == nil {
		return
	}
	infrastructure.RecordGappingOutcome(ctx, t.metrics, player, string(status))
}
