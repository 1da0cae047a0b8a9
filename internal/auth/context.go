package auth

import "context"

type sessionContextKey struct{}

// WithSession attaches a session to the context.
func WithSession(ctx context.Context, session *Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionContextKey{}, session)
}

// SessionFromContext retrieves the authenticated session from the context.
// The second return is false when the caller is logged out.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok
}
