package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

// A trace id correlates every log record and span produced by a single
// report run. The entrypoint attaches one before the pipeline starts;
// downstream code only ever reads it.
type traceKey struct{}

// GenerateTraceID returns a fresh identifier for one report run.
func GenerateTraceID() string {
	return uuid.New().String()
}

// WithTraceID returns a context carrying the given trace id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey{}, traceID)
}

// GetTraceID returns the trace id carried by ctx, or "" when none is set.
func GetTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceKey{}).(string); ok {
		return id
	}
	return ""
}

// EnsureTraceID attaches a generated trace id unless ctx already
// carries one.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, GenerateTraceID())
}
