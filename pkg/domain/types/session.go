package types

import "context"

// SessionID is the opaque caller-supplied session token. Requests without a
// token share the default session.
type SessionID string

// DefaultSessionID is used when the caller does not supply a session token
const DefaultSessionID SessionID = "default"

// String returns the string representation of the session ID
func (s SessionID) String() string {
	return string(s)
}

// Normalize returns the session ID, treating empty as the default session
func (s SessionID) Normalize() SessionID {
	if s == "" {
		return DefaultSessionID
	}
	return s
}

type ctxSessionIDKey struct{}

// WithSessionID stores a session ID in the context
func WithSessionID(ctx context.Context, id SessionID) context.Context {
	return context.WithValue(ctx, ctxSessionIDKey{}, id.Normalize())
}

// SessionIDFromContext extracts the session ID from the context, falling back
// to the default session
func SessionIDFromContext(ctx context.Context) SessionID {
	if id, ok := ctx.Value(ctxSessionIDKey{}).(SessionID); ok {
		return id
	}
	return DefaultSessionID
}
