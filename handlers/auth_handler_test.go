package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmsuite/console-gateway/access"
	"github.com/tmsuite/console-gateway/middleware"
	"github.com/tmsuite/console-gateway/models"
	"github.com/tmsuite/console-gateway/session"
	"github.com/tmsuite/console-gateway/upstream"
	"go.uber.org/zap"
)

// MockAuthAPI is a mock implementation of session.AuthAPI
type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) Login(ctx context.Context, creds upstream.Credentials) (*upstream.LoginResult, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.LoginResult), args.Error(1)
}

func (m *MockAuthAPI) Me(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type handlerFixture struct {
	api     *MockAuthAPI
	store   *session.MemoryStore
	manager *session.Manager
	cookies *middleware.SessionCookie
	auth    *AuthHandler
	session *SessionHandler
}

func newFixture(t *testing.T) *handlerFixture {
	t.Helper()
	logger := zap.NewNop()
	api := new(MockAuthAPI)
	store := session.NewMemoryStore()
	manager := session.NewManager(store, api, nil, time.Hour, logger)
	cookies := middleware.NewSessionCookie("handler-test-key", time.Hour, false)

	return &handlerFixture{
		api:     api,
		store:   store,
		manager: manager,
		cookies: cookies,
		auth:    NewAuthHandler(manager, cookies, "/login", logger),
		session: NewSessionHandler(manager, access.NewEvaluator(logger), logger),
	}
}

func viewerUser() *models.User {
	return &models.User{
		ID:          "u-9",
		Name:        "Vera Viewer",
		Email:       "vera@example.com",
		Role:        "viewer",
		Permissions: []string{"client:view", "report:view"},
		IsActive:    true,
	}
}

func TestHandleLogin(t *testing.T) {
	t.Run("success sets the session cookie and returns user plus nav", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("Login", mock.Anything, upstream.Credentials{
			Identifier: "vera@example.com", Password: "pw",
		}).Return(&upstream.LoginResult{Token: "tok", User: viewerUser()}, nil)

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"identifier":"vera@example.com","password":"pw"}`))
		w := httptest.NewRecorder()
		f.auth.HandleLogin(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)

		body := w.Body.String()
		assert.Contains(t, body, `"vera@example.com"`)
		assert.Contains(t, body, `"navigation"`)
		assert.Contains(t, body, `"Clients"`)
		// viewer never sees the Users & Roles group
		assert.NotContains(t, body, `"key":"users"`)
	})

	t.Run("bad credentials surface the upstream message", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("Login", mock.Anything, mock.Anything).Return(nil, &upstream.AuthError{
			StatusCode: 401, Message: "Invalid identifier or password",
		})

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"identifier":"vera@example.com","password":"wrong"}`))
		w := httptest.NewRecorder()
		f.auth.HandleLogin(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid identifier or password")
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("missing fields fail validation before any upstream call", func(t *testing.T) {
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"identifier":"vera@example.com"}`))
		w := httptest.NewRecorder()
		f.auth.HandleLogin(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		f.api.AssertNotCalled(t, "Login")
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not-json"))
		w := httptest.NewRecorder()
		f.auth.HandleLogin(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleLogout(t *testing.T) {
	t.Run("clears the session and redirects to login", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.store.Put(ctx, "sid-1",
			&models.Session{Token: "tok", User: viewerUser()}, time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
		w := httptest.NewRecorder()
		require.NoError(t, f.cookies.Issue(w, "sid-1"))
		for _, c := range w.Result().Cookies() {
			req.AddCookie(c)
		}

		w = httptest.NewRecorder()
		f.auth.HandleLogout(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, 0, f.store.Len())
	})

	t.Run("already logged out still redirects", func(t *testing.T) {
		f := newFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
		w := httptest.NewRecorder()
		f.auth.HandleLogout(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})
}

func guardedRequest(method, target string, sid string, sess *models.Session) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(middleware.WithSession(req.Context(), sid, sess))
}

func TestSessionEndpoints(t *testing.T) {
	sess := &models.Session{Token: "tok", User: viewerUser()}

	t.Run("current user returns the session's record", func(t *testing.T) {
		f := newFixture(t)

		w := httptest.NewRecorder()
		f.session.HandleCurrentUser(w, guardedRequest(http.MethodGet, "/api/v1/session", "sid", sess))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"u-9"`)
	})

	t.Run("refresh replaces the user and recomputes nav", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		require.NoError(t, f.store.Put(ctx, "sid-r", sess, time.Hour))

		promoted := viewerUser()
		promoted.Role = "admin"
		f.api.On("Me", mock.Anything, "tok").Return(promoted, nil)

		w := httptest.NewRecorder()
		f.session.HandleRefresh(w, guardedRequest(http.MethodPost, "/api/v1/session/refresh", "sid-r", sess))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"admin"`)
		// admin has the all-modules sentinel, so the group appears now
		assert.Contains(t, w.Body.String(), `"key":"users"`)
	})

	t.Run("refresh without a live session answers 401", func(t *testing.T) {
		f := newFixture(t)

		w := httptest.NewRecorder()
		f.session.HandleRefresh(w, guardedRequest(http.MethodPost, "/api/v1/session/refresh", "ghost", sess))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("navigation reflects the session role", func(t *testing.T) {
		f := newFixture(t)

		w := httptest.NewRecorder()
		f.session.HandleNavigation(w, guardedRequest(http.MethodGet, "/api/v1/navigation", "sid", sess))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"Dashboard"`)
		assert.NotContains(t, w.Body.String(), `"Payments"`)
	})

	t.Run("capability check reports per-code grants", func(t *testing.T) {
		f := newFixture(t)

		w := httptest.NewRecorder()
		f.session.HandleCapabilityCheck(w, guardedRequest(http.MethodGet,
			"/api/v1/capabilities/check?code=client:view&code=client:delete", "sid", sess))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"client:view":true`)
		assert.Contains(t, w.Body.String(), `"client:delete":false`)
		assert.Contains(t, w.Body.String(), `"any":true`)
	})

	t.Run("capability check without codes is a bad request", func(t *testing.T) {
		f := newFixture(t)

		w := httptest.NewRecorder()
		f.session.HandleCapabilityCheck(w, guardedRequest(http.MethodGet,
			"/api/v1/capabilities/check", "sid", sess))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
