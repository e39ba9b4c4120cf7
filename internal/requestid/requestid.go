// Package requestid carries the per-request identifier through contexts so
// middleware, handlers, and the hook pipeline can correlate log and audit
// entries without importing each other.
package requestid

import "context"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the request id.
func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id attached to ctx, or the empty string.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
