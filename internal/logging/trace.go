package logging

import (
	"context"

	"github.com/oklog/ulid/v2"
)

type ctxKey struct{}

// RequestIDHeader carries the request ID to the API so server and client
// logs can be joined.
const RequestIDHeader = "X-Request-ID"

// NewRequestID returns a ULID, so IDs sort by the time they were issued.
func NewRequestID() string {
	return ulid.Make().String()
}

// ContextWithRequestID stores id in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFrom returns the request ID stored in ctx, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// EnsureRequestID reuses the request ID in ctx or issues a new one.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIDFrom(ctx); id != "" {
		return ctx, id
	}
	id := NewRequestID()
	return ContextWithRequestID(ctx, id), id
}
