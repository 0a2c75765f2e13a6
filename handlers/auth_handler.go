// Package handlers contains the gateway's HTTP handlers. They are thin:
// session and permission semantics live in the session and access
// packages.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tmsuite/console-gateway/access"
	"github.com/tmsuite/console-gateway/middleware"
	"github.com/tmsuite/console-gateway/models"
	"github.com/tmsuite/console-gateway/nav"
	"github.com/tmsuite/console-gateway/session"
	"github.com/tmsuite/console-gateway/upstream"
	"github.com/tmsuite/console-gateway/utils"
	"go.uber.org/zap"
)

// AuthHandler handles login and logout.
type AuthHandler struct {
	sessions  *session.Manager
	cookies   *middleware.SessionCookie
	loginPath string
	logger    *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(sessions *session.Manager, cookies *middleware.SessionCookie, loginPath string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions:  sessions,
		cookies:   cookies,
		loginPath: loginPath,
		logger:    logger,
	}
}

// loginResponse is what the SPA needs to boot after a login: the user
// record plus the navigation tree visible to its role.
type loginResponse struct {
	User       *models.User `json:"user"`
	Navigation []nav.Item   `json:"navigation"`
}

// HandleLogin handles POST /auth/login. Bad credentials surface the
// upstream's message to the form; the prior session (if any) is left
// untouched.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds upstream.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(creds); err != nil {
		var validationErr *utils.ValidationError
		if errors.As(err, &validationErr) {
			_ = utils.WriteBadRequest(w, validationErr.Message, validationErr.Details())
			return
		}
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	sid, sess, err := h.sessions.Login(r.Context(), creds)
	if err != nil {
		var authErr *upstream.AuthError
		if errors.As(err, &authErr) {
			_ = utils.WriteUnauthorized(w, authErr.Message)
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Login is temporarily unavailable")
		return
	}

	if err := h.cookies.Issue(w, sid); err != nil {
		h.logger.Error("failed to issue session cookie", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, loginResponse{
		User:       sess.User,
		Navigation: nav.Filter(sess.User.ParsedRole()),
	})
}

// HandleLogout handles GET /auth/logout: clears the session entry and
// cookie, then forces navigation to the login entry point. Safe to call
// when already logged out.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	sid := h.cookies.Read(r)
	if err := h.sessions.Logout(r.Context(), sid); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
	}

	h.cookies.Clear(w)
	http.Redirect(w, r, h.loginPath, http.StatusSeeOther)
}

// SessionHandler serves the current session's profile, refresh, nav
// tree, and capability checks. All routes are mounted behind the guard.
type SessionHandler struct {
	sessions  *session.Manager
	evaluator *access.Evaluator
	logger    *zap.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions *session.Manager, evaluator *access.Evaluator, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		evaluator: evaluator,
		logger:    logger,
	}
}

// HandleCurrentUser handles GET /api/v1/session.
func (h *SessionHandler) HandleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}
	_ = utils.WriteOK(w, user)
}

// HandleRefresh handles POST /api/v1/session/refresh: re-fetches the
// profile after a role or permission edit made elsewhere in the console.
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionIDFromContext(r.Context())

	user, err := h.sessions.RefreshProfile(r.Context(), sid)
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			_ = utils.WriteUnauthorized(w, "Session expired")
			return
		}
		h.logger.Error("profile refresh failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	_ = utils.WriteOK(w, loginResponse{
		User:       user,
		Navigation: nav.Filter(user.ParsedRole()),
	})
}

// HandleNavigation handles GET /api/v1/navigation.
func (h *SessionHandler) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		_ = utils.WriteUnauthorized(w, "")
		return
	}
	_ = utils.WriteOK(w, nav.Filter(user.ParsedRole()))
}

// capabilityResponse answers a conditional-UI probe: per-code grants
// plus the any-of aggregate.
type capabilityResponse struct {
	Granted map[string]bool `json:"granted"`
	Any     bool            `json:"any"`
}

// HandleCapabilityCheck handles
// GET /api/v1/capabilities/check?code=a:x&code=b:y. The SPA uses it to
// decide which actions, buttons, and fields to render.
func (h *SessionHandler) HandleCapabilityCheck(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	codes := r.URL.Query()["code"]
	if len(codes) == 0 {
		_ = utils.WriteBadRequest(w, "At least one code parameter is required", nil)
		return
	}

	granted := make(map[string]bool, len(codes))
	for _, code := range codes {
		granted[code] = h.evaluator.Can(user, code)
	}

	_ = utils.WriteOK(w, capabilityResponse{
		Granted: granted,
		Any:     h.evaluator.CanAny(user, codes),
	})
}
