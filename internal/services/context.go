package services

import "context"

type contextKey string

const (
	urlKey           contextKey = "url"
	correlationIDKey contextKey = "correlation_id"
)

// WithURL annotates context with the URL under resolution.
func WithURL(ctx context.Context, url string) context.Context {
	if url == "" {
		return ctx
	}
	return context.WithValue(ctx, urlKey, url)
}

// URLFromContext returns the URL under resolution if present.
func URLFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(urlKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithCorrelationID annotates context with a per-resolution correlation identifier.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation identifier if present.
func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(correlationIDKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
