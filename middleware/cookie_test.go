package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueCookie(t *testing.T, c *SessionCookie, sid string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, c.Issue(w, sid))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionCookie(t *testing.T) {
	codec := NewSessionCookie("test-signing-key", time.Hour, false)

	t.Run("issue then read round-trips the session id", func(t *testing.T) {
		cookie := issueCookie(t, codec, "sid-123")
		assert.Equal(t, SessionCookieName, cookie.Name)
		assert.True(t, cookie.HttpOnly)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		assert.Equal(t, "sid-123", codec.Read(req))
	})

	t.Run("missing cookie reads as empty", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Empty(t, codec.Read(req))
	})

	t.Run("tampered cookie reads as empty", func(t *testing.T) {
		cookie := issueCookie(t, codec, "sid-123")
		cookie.Value += "x"

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		assert.Empty(t, codec.Read(req))
	})

	t.Run("cookie signed with a different key reads as empty", func(t *testing.T) {
		other := NewSessionCookie("other-key", time.Hour, false)
		cookie := issueCookie(t, other, "sid-123")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		assert.Empty(t, codec.Read(req))
	})

	t.Run("expired cookie reads as empty", func(t *testing.T) {
		short := NewSessionCookie("test-signing-key", -time.Minute, false)
		cookie := issueCookie(t, short, "sid-123")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		assert.Empty(t, short.Read(req))
	})

	t.Run("clear expires the cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		codec.Clear(w)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
		assert.Empty(t, cookies[0].Value)
	})
}
