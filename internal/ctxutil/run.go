// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// RunIDKey is the context key for the submission pass ID.
type RunIDKey struct{}

// TriggerKey is the context key for what started a submission pass.
type TriggerKey struct{}

// WithRunID returns a context with the pass ID embedded.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey{}, runID)
}

// RunIDFromContext returns the pass ID from context, or empty string if not set.
func RunIDFromContext(ctx context.Context) string {
	if v := ctx.Value(RunIDKey{}); v != nil {
		return v.(string)
	}
	return ""
}

// WithTrigger returns a context carrying the trigger of the pass ("auto" or "explicit").
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, TriggerKey{}, trigger)
}

// TriggerFromContext returns the trigger from context, or empty string if not set.
func TriggerFromContext(ctx context.Context) string {
	if v := ctx.Value(TriggerKey{}); v != nil {
		return v.(string)
	}
	return ""
}
