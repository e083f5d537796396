package router

import (
	"context"
	"log/slog"
)

// RequestContext is the per-request Context of §2/§5: a logger bound with
// the request id, plus whatever deadline/cancellation the caller's
// context.Context already carries. It is never shared across requests.
type RequestContext struct {
	context.Context
	Logger    *slog.Logger
	RequestID string
}

// NewRequestContext wraps a context.Context with a request-scoped logger.
func NewRequestContext(ctx context.Context, base *slog.Logger, requestID string) *RequestContext {
	return &RequestContext{
		Context:   ctx,
		Logger:    base.With("request_id", requestID),
		RequestID: requestID,
	}
}
