package resilience

import "context"

type contextKey int

const correlationIDKey contextKey = iota

// ContextWithCorrelationID returns a child context carrying the given
// correlation id. Empty ids are not stored.
func ContextWithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if correlationID == "" {
		return ctx
	}

	return context.WithValue(ctx, correlationIDKey, correlationID)
}

// CorrelationIDFromContext extracts the correlation id from ctx, or returns
// an empty string when none was set.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}

	return ""
}
