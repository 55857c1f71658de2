// Package domain provides core billing types, the application error model,
// and context helpers shared across packages.
package domain

import (
	"context"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey contextKey = iota

	// eventContextKey stores the processor event being reconciled.
	eventContextKey
)

// EventRef identifies the processor event a unit of work belongs to.
type EventRef struct {
	ID   string
	Type string
}

// --- Request ID Context Helpers ---

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// --- Event Context Helpers ---

// NewContextWithEvent returns a new context carrying the event reference.
func NewContextWithEvent(ctx context.Context, ref EventRef) context.Context {
	return context.WithValue(ctx, eventContextKey, ref)
}

// EventFromContext retrieves the event reference from context.
func EventFromContext(ctx context.Context) (EventRef, bool) {
	ref, ok := ctx.Value(eventContextKey).(EventRef)
	return ref, ok
}
