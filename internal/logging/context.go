package logging

import (
	"context"
	"log/slog"

	"letterbox/internal/services"
)

// ContextFields extracts the clip, pass and run identifiers stored in ctx.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if run, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, run))
	}
	if pass, ok := services.PassFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPass, pass))
	}
	if clip, ok := services.ClipIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldClipID, clip))
	}
	return fields
}

// WithContext returns a logger augmented with the fields derived from ctx.
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
