package actor

import (
	"context"
	"errors"
)

// Key for actor identity in context
type contextKey string

const (
	actorKey     contextKey = "actor"
	requestIDKey contextKey = "requestID"
)

// SystemActor is the audit identity used when a request carries no actor.
const SystemActor = "system"

// ErrNoActorInContext is returned when no actor is found in context
var ErrNoActorInContext = errors.New("no actor found in context")

// WithActor adds the acting user's identity to the context
func WithActor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actorKey, name)
}

// FromContext extracts the actor from the context
func FromContext(ctx context.Context) (string, error) {
	name, ok := ctx.Value(actorKey).(string)
	if !ok || name == "" {
		return "", ErrNoActorInContext
	}
	return name, nil
}

// FromContextOrSystem extracts the actor or falls back to SystemActor
func FromContextOrSystem(ctx context.Context) string {
	name, err := FromContext(ctx)
	if err != nil {
		return SystemActor
	}
	return name
}

// ErrNoRequestIDInContext is returned when no request ID is found in context
var ErrNoRequestIDInContext = errors.New("no request ID found in context")

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// FromRequestIDContext extracts the request ID from the context
func FromRequestIDContext(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "", ErrNoRequestIDInContext
	}
	return requestID, nil
}
