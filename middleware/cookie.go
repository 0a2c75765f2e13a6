package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie holding the signed session ID. The
// upstream bearer token itself never reaches the browser.
const SessionCookieName = "tms_session"

// SessionCookie signs and verifies the session-ID cookie so a tampered
// cookie reads as no session instead of someone else's.
type SessionCookie struct {
	signingKey []byte
	ttl        time.Duration
	secure     bool
}

// NewSessionCookie creates a session cookie codec.
func NewSessionCookie(signingKey string, ttl time.Duration, secure bool) *SessionCookie {
	return &SessionCookie{
		signingKey: []byte(signingKey),
		ttl:        ttl,
		secure:     secure,
	}
}

// Issue sets the session cookie for a freshly created session.
func (c *SessionCookie) Issue(w http.ResponseWriter, sid string) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	})

	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Read extracts and verifies the session ID from the request cookie.
// Any absent, expired, or tampered cookie returns the empty string;
// the caller treats that as unauthenticated, not as an error.
func (c *SessionCookie) Read(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.signingKey, nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	return claims.Subject
}

// Clear expires the session cookie.
func (c *SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
