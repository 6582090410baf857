package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSource names the data source a record came from.
	FieldSource = "source"
	// FieldRecordKey is the stable identity hash of an input record.
	FieldRecordKey = "record_key"
	// FieldProductionID identifies a resolved production.
	FieldProductionID = "production_id"
	// FieldLocationID identifies a resolved location.
	FieldLocationID = "location_id"
	// FieldEventType classifies WARN and ERROR lines for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to an operator.
	FieldErrorHint = "error_hint"
)

type contextKey int

const (
	sourceKey contextKey = iota
	recordKeyKey
)

// WithSource tags ctx with the data source being processed.
func WithSource(ctx context.Context, source string) context.Context {
	if source == "" {
		return ctx
	}
	return context.WithValue(ctx, sourceKey, source)
}

// WithRecordKey tags ctx with the record currently flowing through the pipeline.
func WithRecordKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, recordKeyKey, key)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if source, ok := ctx.Value(sourceKey).(string); ok {
		fields = append(fields, slog.String(FieldSource, source))
	}
	if key, ok := ctx.Value(recordKeyKey).(string); ok {
		fields = append(fields, slog.String(FieldRecordKey, key))
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
	return logger.With(attrsToArgs(fields)...)
}
