// Package upstream is the gateway's client for the TMS REST API. Only the
// two auth endpoints the access-control core depends on are modeled here;
// everything else the console proxies passes through untouched.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tmsuite/console-gateway/config"
	"github.com/tmsuite/console-gateway/models"
)

// ErrUnauthorized reports that the upstream rejected the bearer token.
// Callers treat it as a session-invalidation signal, never as a retryable
// failure.
var ErrUnauthorized = errors.New("upstream rejected credentials")

// AuthError carries the user-displayable message from an upstream error
// body, e.g. a failed login.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("upstream auth error (status %d): %s", e.StatusCode, e.Message)
}

// Credentials is the login request body forwarded to the upstream API.
type Credentials struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// LoginResult is the upstream response to a successful login.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Client calls the upstream TMS auth endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an upstream client. The http.Client's transport
// should be a BearerTransport when token attachment is wanted; Login
// itself never sends a bearer header.
func NewClient(cfg config.UpstreamConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

// Login exchanges credentials for a token and user record via
// POST /auth/login. A non-2xx response surfaces as *AuthError carrying
// the upstream's message (generic fallback when the body is unusable).
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
		}
	}

	var result LoginResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse login response: %w", err)
	}
	if result.Token == "" || result.User == nil {
		return nil, fmt.Errorf("incomplete login response: missing token or user")
	}

	return &result, nil
}

// Me fetches the current user record via GET /auth/me with the given
// bearer token. A 401 returns ErrUnauthorized so callers can tear the
// session down.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read profile response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile fetch failed: status %d", resp.StatusCode)
	}

	var envelope struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse profile response: %w", err)
	}
	if envelope.User == nil {
		return nil, fmt.Errorf("profile response missing user")
	}

	return envelope.User, nil
}

// errorMessage extracts a displayable message from an upstream error
// body. Falls back to a generic message when the body is not the
// expected shape.
func errorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return "Authentication failed"
}
