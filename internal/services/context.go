package services

import "context"

type contextKey string

const (
	clipIDKey contextKey = "clip_id"
	passKey   contextKey = "pass"
	runIDKey  contextKey = "run_id"
)

// WithClipID annotates context with the metadata row being processed.
func WithClipID(ctx context.Context, clipID string) context.Context {
	if clipID == "" {
		return ctx
	}
	return context.WithValue(ctx, clipIDKey, clipID)
}

// ClipIDFromContext extracts the clip identifier if present.
func ClipIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(clipIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPass annotates context with the batch pass name (detect/crop).
func WithPass(ctx context.Context, pass string) context.Context {
	if pass == "" {
		return ctx
	}
	return context.WithValue(ctx, passKey, pass)
}

// PassFromContext returns the pass name if present.
func PassFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(passKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
