package infrastructure

import "context"

// contextKey is a private type for context keys.
type contextKey string

// batchIDContextKey stores the upload batch identifier in a context so the
// logger can stamp every record produced while that batch is processed.
const batchIDContextKey contextKey = "batch_id"

// WithBatchID returns a context carrying the batch identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDContextKey, id)
}

// BatchIDFromContext returns the batch identifier or "" when absent.
func BatchIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(batchIDContextKey).(string); ok {
		return id
	}
	return ""
}
