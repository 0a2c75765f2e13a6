package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmsuite/console-gateway/config"
	"github.com/tmsuite/console-gateway/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.UpstreamConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil)
}

func TestLoginRequest(t *testing.T) {
	ctx := context.Background()
	creds := Credentials{Identifier: "jane@example.com", Password: "secret"}

	t.Run("success returns token and user", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/auth/login", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var got Credentials
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, creds, got)

			_ = json.NewEncoder(w).Encode(LoginResult{
				Token: "issued-token",
				User:  &models.User{ID: "u-1", Role: "admin"},
			})
		})

		result, err := client.Login(ctx, creds)
		require.NoError(t, err)
		assert.Equal(t, "issued-token", result.Token)
		assert.Equal(t, "u-1", result.User.ID)
	})

	t.Run("error body message is surfaced", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid identifier or password"}`))
		})

		_, err := client.Login(ctx, creds)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Invalid identifier or password", authErr.Message)
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	})

	t.Run("unusable error body falls back to generic message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>nope</html>"))
		})

		_, err := client.Login(ctx, creds)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "Authentication failed", authErr.Message)
	})

	t.Run("incomplete success body is rejected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token":"tok"}`))
		})

		_, err := client.Login(ctx, creds)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "incomplete login response")
	})
}

func TestMeRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("success returns the user record", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/me", r.URL.Path)
			assert.Equal(t, "Bearer the-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"user":{"id":"u-2","role":"viewer","permissions":["report:view"]}}`))
		})

		user, err := client.Me(ctx, "the-token")
		require.NoError(t, err)
		assert.Equal(t, "u-2", user.ID)
		assert.Equal(t, []string{"report:view"}, user.Permissions)
	})

	t.Run("401 maps to ErrUnauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.Me(ctx, "expired")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("other failures are not unauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.Me(ctx, "tok")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnauthorized)
	})
}
