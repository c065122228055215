package logging

import (
	"context"
	"log/slog"

	"physiobids/internal/pipeline"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSubject is the standardized structured logging key for BIDS subject identifiers.
	FieldSubject = "subject"
	// FieldSession is the standardized structured logging key for BIDS session identifiers.
	FieldSession = "session"
	// FieldRun is the standardized structured logging key for run identifiers (run-NN).
	FieldRun = "run"
	// FieldCorrelationID is the standardized structured logging key for correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldPath is the standardized structured logging key for file paths.
	FieldPath = "path"
	// FieldChannel is the standardized structured logging key for recording channel labels.
	FieldChannel = "channel"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if subject, ok := pipeline.SubjectFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSubject, subject))
	}
	if session, ok := pipeline.SessionFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSession, session))
	}
	if run, ok := pipeline.RunFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRun, run))
	}
	if id, ok := pipeline.CorrelationIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, id))
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
