package upstream

import (
	"net/http"

	"go.uber.org/zap"
)

// SessionResolver resolves the session ID and bearer token for an
// outgoing request, typically from the request context populated by the
// route guard.
type SessionResolver func(*http.Request) (sid, token string)

// UnauthorizedHook is invoked once per 401 response observed by the
// transport. The session layer registers its teardown here so the
// dependency direction stays HTTP layer -> session API.
type UnauthorizedHook func(sid string)

// BearerTransport is an http.RoundTripper that attaches the session's
// bearer token to every outgoing upstream request and signals the hook
// when the upstream answers 401. It is registered once at client
// construction; handlers never set auth headers themselves.
type BearerTransport struct {
	Base    http.RoundTripper
	Resolve SessionResolver
	Hook    UnauthorizedHook
	Log     *zap.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	var sid, token string
	if t.Resolve != nil {
		sid, token = t.Resolve(req)
	}

	// Clone before mutating: RoundTrippers must not modify the caller's
	// request.
	out := req.Clone(req.Context())
	if token != "" && out.Header.Get("Authorization") == "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := base.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && t.Hook != nil && sid != "" {
		if t.Log != nil {
			t.Log.Warn("upstream returned 401, signaling session teardown",
				zap.String("path", req.URL.Path),
				zap.String("session_id", sid))
		}
		t.Hook(sid)
	}

	return resp, nil
}
