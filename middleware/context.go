package middleware

import (
	"context"
	"net/http"

	"github.com/tmsuite/console-gateway/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// sessionKey is the context key for the resolved session
	sessionKey contextKey = "session"

	// sessionIDKey is the context key for the session ID
	sessionIDKey contextKey = "session_id"
)

// WithSession adds the resolved session and its ID to the context
func WithSession(ctx context.Context, sid string, sess *models.Session) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, sid)
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext retrieves the resolved session from context.
// Returns nil outside a guarded route.
func SessionFromContext(ctx context.Context) *models.Session {
	if val := ctx.Value(sessionKey); val != nil {
		if sess, ok := val.(*models.Session); ok {
			return sess
		}
	}
	return nil
}

// SessionIDFromContext retrieves the session ID from context
func SessionIDFromContext(ctx context.Context) string {
	if val := ctx.Value(sessionIDKey); val != nil {
		if sid, ok := val.(string); ok {
			return sid
		}
	}
	return ""
}

// UserFromContext retrieves the authenticated user from context.
// Returns nil outside a guarded route.
func UserFromContext(ctx context.Context) *models.User {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.User
	}
	return nil
}

// ResolveUpstreamSession is the upstream.SessionResolver for proxied
// requests: it reads the guarded request's session out of its context.
func ResolveUpstreamSession(r *http.Request) (sid, token string) {
	ctx := r.Context()
	sess := SessionFromContext(ctx)
	if sess == nil {
		return "", ""
	}
	return SessionIDFromContext(ctx), sess.Token
}
