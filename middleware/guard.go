package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/tmsuite/console-gateway/access"
	"github.com/tmsuite/console-gateway/audit"
	"github.com/tmsuite/console-gateway/models"
	"github.com/tmsuite/console-gateway/session"
	"github.com/tmsuite/console-gateway/utils"
	"go.uber.org/zap"
)

// SessionResolver resolves a session ID to a live session, performing
// the bootstrap profile fetch when needed. *session.Manager implements
// it.
type SessionResolver interface {
	Resolve(ctx context.Context, sid string) (*models.Session, error)
}

// Guard gates routed views behind authentication and, per route, behind
// one named capability code.
type Guard struct {
	sessions  SessionResolver
	evaluator *access.Evaluator
	cookies   *SessionCookie
	recorder  audit.Recorder
	loginPath string
	logger    *zap.Logger
}

// NewGuard creates a route guard.
func NewGuard(sessions SessionResolver, evaluator *access.Evaluator, cookies *SessionCookie, recorder audit.Recorder, loginPath string, logger *zap.Logger) *Guard {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Guard{
		sessions:  sessions,
		evaluator: evaluator,
		cookies:   cookies,
		recorder:  recorder,
		loginPath: loginPath,
		logger:    logger,
	}
}

// RequireSession gates the wrapped handler behind authentication.
//
// The request passes through three linear states: the session entry is
// resolved (running the bootstrap profile fetch inline when the entry
// was rehydrated without a cached user); an unresolvable session clears
// the cookie and answers 303 to the login entry point, so the browser
// replaces the guarded URL rather than rendering it; a resolved session
// is injected into the request context for the subtree.
func (g *Guard) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sid := g.cookies.Read(r)
		sess, err := g.sessions.Resolve(ctx, sid)
		if err != nil {
			if !errors.Is(err, session.ErrNotAuthenticated) {
				g.logger.Error("session resolution failed",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				_ = utils.WriteInternalServerError(w, "")
				return
			}
			g.cookies.Clear(w)
			http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(ctx, sid, sess)))
	})
}

// RequirePermission gates the wrapped handler behind one capability
// code. It must be mounted after RequireSession: the check runs against
// the already-resolved session and renders the fixed access-denied body
// instead of the page when the capability is not granted. Denial is a
// boolean outcome, never an error.
func (g *Guard) RequirePermission(code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			user := UserFromContext(ctx)

			if !g.evaluator.Can(user, code) {
				event := audit.NewEvent(audit.ActionAccessDenied).
					WithSession(SessionIDFromContext(ctx)).
					WithDetail(code)
				if user != nil {
					event = event.WithUser(user.ID, user.Email)
				}
				g.recorder.Record(ctx, event)

				g.logger.Warn("access denied",
					zap.String("path", r.URL.Path),
					zap.String("code", code))
				_ = utils.WriteForbidden(w, "You do not have access to this page")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
