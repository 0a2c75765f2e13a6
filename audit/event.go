// Package audit records authentication events (logins, logouts, session
// teardowns, denied access) to an append-only trail.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action represents the type of auth event being audited
type Action string

const (
	ActionLogin          Action = "login"
	ActionLoginFailed    Action = "login_failed"
	ActionLogout         Action = "logout"
	ActionSessionExpired Action = "session_expired"
	ActionAccessDenied   Action = "access_denied"
)

// Event represents one audit trail entry
type Event struct {
	ID        uuid.UUID `json:"id"`
	Action    Action    `json:"action"`
	SessionID string    `json:"session_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an Event with a fresh ID and timestamp
func NewEvent(action Action) *Event {
	return &Event{
		ID:        uuid.New(),
		Action:    action,
		Timestamp: time.Now().UTC(),
	}
}

// WithSession sets the session ID
func (e *Event) WithSession(sid string) *Event {
	e.SessionID = sid
	return e
}

// WithUser sets the user identity fields
func (e *Event) WithUser(userID, email string) *Event {
	e.UserID = userID
	e.Email = email
	return e
}

// WithDetail sets a free-form detail string
func (e *Event) WithDetail(detail string) *Event {
	e.Detail = detail
	return e
}

// Recorder appends events to the trail. Implementations must tolerate
// being called from request handlers: a failed insert is logged, never
// propagated into the auth flow.
type Recorder interface {
	Record(ctx context.Context, event *Event)
}

// NopRecorder discards events. Used when no audit database is configured.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, *Event) {}
