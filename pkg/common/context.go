package common

import (
	"context"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyEventID   ContextKey = "event_id"
)

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}

// WithEventID tags a context with the id of the event being projected.
func WithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, ContextKeyEventID, eventID)
}

// GetEventID extracts the projected event id from context
func GetEventID(ctx context.Context) (string, bool) {
	eventID, ok := ctx.Value(ContextKeyEventID).(string)
	return eventID, ok
}
