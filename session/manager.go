package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tmsuite/console-gateway/audit"
	"github.com/tmsuite/console-gateway/models"
	"github.com/tmsuite/console-gateway/upstream"
	"go.uber.org/zap"
)

// AuthAPI is the slice of the upstream client the manager depends on.
type AuthAPI interface {
	Login(ctx context.Context, creds upstream.Credentials) (*upstream.LoginResult, error)
	Me(ctx context.Context, token string) (*models.User, error)
}

// Manager is the single source of truth for "who is logged in". It is
// constructed once and injected; there is no package-level instance.
//
// Every mutation path (Login, Logout, RefreshProfile, Resolve bootstrap,
// the 401 teardown) goes through the Store, so token and user are always
// written and cleared together.
type Manager struct {
	store    Store
	api      AuthAPI
	recorder audit.Recorder
	ttl      time.Duration
	logger   *zap.Logger

	// teardowns guards the 401 teardown so two parallel failures for the
	// same session produce one delete and one audit event. Session IDs
	// are never reused, so a marker per torn-down session is bounded by
	// the number of sessions ended this way over the process lifetime.
	teardowns sync.Map // sid -> *sync.Once
}

// NewManager creates a session manager.
func NewManager(store Store, api AuthAPI, recorder audit.Recorder, ttl time.Duration, logger *zap.Logger) *Manager {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Manager{
		store:    store,
		api:      api,
		recorder: recorder,
		ttl:      ttl,
		logger:   logger,
	}
}

// Login authenticates against the upstream API and, on success,
// atomically persists the {token,user} pair under a fresh session ID.
// On failure nothing is persisted and the upstream error (carrying the
// displayable message for bad credentials) is returned to the caller.
func (m *Manager) Login(ctx context.Context, creds upstream.Credentials) (string, *models.Session, error) {
	result, err := m.api.Login(ctx, creds)
	if err != nil {
		var authErr *upstream.AuthError
		if errors.As(err, &authErr) {
			m.recorder.Record(ctx, audit.NewEvent(audit.ActionLoginFailed).
				WithDetail(authErr.Message))
		}
		return "", nil, err
	}

	sid := uuid.NewString()
	sess := &models.Session{Token: result.Token, User: result.User}

	if err := m.store.Put(ctx, sid, sess, m.ttl); err != nil {
		return "", nil, err
	}

	m.recorder.Record(ctx, audit.NewEvent(audit.ActionLogin).
		WithSession(sid).
		WithUser(result.User.ID, result.User.Email))

	m.logger.Info("session created",
		zap.String("session_id", sid),
		zap.String("user_id", result.User.ID),
		zap.String("role", result.User.Role))

	return sid, sess, nil
}

// Logout clears the session entry. It is idempotent: logging out an
// already-ended session is a no-op besides the redirect the handler
// issues.
func (m *Manager) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}

	sess, err := m.store.Get(ctx, sid)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, sid); err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	event := audit.NewEvent(audit.ActionLogout).WithSession(sid)
	if sess.User != nil {
		event = event.WithUser(sess.User.ID, sess.User.Email)
	}
	m.recorder.Record(ctx, event)

	m.logger.Info("session ended", zap.String("session_id", sid))
	return nil
}

// Resolve loads the session for a request, performing the bootstrap
// profile fetch when the entry was rehydrated with a token but no cached
// user. A failed bootstrap clears the entry and degrades to
// ErrNotAuthenticated; it never retries and never surfaces a crash.
func (m *Manager) Resolve(ctx context.Context, sid string) (*models.Session, error) {
	if sid == "" {
		return nil, ErrNotAuthenticated
	}

	sess, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotAuthenticated
	}

	if sess.NeedsProfile() {
		user, err := m.api.Me(ctx, sess.Token)
		if err != nil {
			m.logger.Warn("session bootstrap failed, clearing session",
				zap.String("session_id", sid),
				zap.Error(err))
			m.Teardown(ctx, sid)
			return nil, ErrNotAuthenticated
		}
		sess.User = user
		if err := m.store.Put(ctx, sid, sess, m.ttl); err != nil {
			return nil, err
		}
	}

	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	return sess, nil
}

// RefreshProfile re-fetches the user record while keeping the existing
// token. Used after role or permission edits elsewhere in the console.
// Returns ErrNotAuthenticated when there is no valid session, or when
// the upstream rejects the token (the session is torn down first).
func (m *Manager) RefreshProfile(ctx context.Context, sid string) (*models.User, error) {
	sess, err := m.Resolve(ctx, sid)
	if err != nil {
		return nil, err
	}

	user, err := m.api.Me(ctx, sess.Token)
	if err != nil {
		if errors.Is(err, upstream.ErrUnauthorized) {
			m.Teardown(ctx, sid)
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	sess.User = user
	if err := m.store.Put(ctx, sid, sess, m.ttl); err != nil {
		return nil, err
	}

	m.logger.Debug("profile refreshed",
		zap.String("session_id", sid),
		zap.String("user_id", user.ID))

	return user, nil
}

// Teardown ends a session after an upstream 401 (or a failed bootstrap).
// It runs at most once per session ID: parallel failing requests reach
// the same final state with a single delete and a single audit event,
// and a repeat invocation does not error.
func (m *Manager) Teardown(ctx context.Context, sid string) {
	if sid == "" {
		return
	}

	onceVal, _ := m.teardowns.LoadOrStore(sid, &sync.Once{})
	onceVal.(*sync.Once).Do(func() {
		sess, err := m.store.Get(ctx, sid)
		if err != nil {
			m.logger.Error("teardown: failed to read session", zap.Error(err))
		}
		if err := m.store.Delete(ctx, sid); err != nil {
			m.logger.Error("teardown: failed to delete session", zap.Error(err))
		}

		event := audit.NewEvent(audit.ActionSessionExpired).WithSession(sid)
		if sess != nil && sess.User != nil {
			event = event.WithUser(sess.User.ID, sess.User.Email)
		}
		m.recorder.Record(ctx, event)

		m.logger.Info("session torn down", zap.String("session_id", sid))
	})
}

// Hook adapts Teardown for the upstream transport's 401 signal.
func (m *Manager) Hook() upstream.UnauthorizedHook {
	return func(sid string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		m.Teardown(ctx, sid)
	}
}
