package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one invocation of the prediction pipeline.
	FieldRunID = "run_id"
	// FieldSample is the stem name of the input curve being processed.
	FieldSample = "sample"
	// FieldEventType classifies warnings for filtering.
	FieldEventType = "event_type"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	runIDKey contextKey = iota
	sampleKey
)

// WithRunID stores the run identifier on ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// WithSample stores the current sample name on ctx.
func WithSample(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, sampleKey, name)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if name, ok := ctx.Value(sampleKey).(string); ok && name != "" {
		fields = append(fields, slog.String(FieldSample, name))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
