// Package session owns the authenticated identity for every browser
// session: login, logout, profile refresh, rehydration, and the global
// teardown triggered by upstream 401 responses.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/tmsuite/console-gateway/models"
)

var (
	// ErrNotAuthenticated reports that no valid session exists for the
	// requested operation.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Store persists one entry per session ID holding the serialized
// {token,user} pair.
//
// Get returns (nil, nil) for an absent entry. Implementations must treat
// a corrupted (unparseable) entry exactly like an absent one: drop it and
// return (nil, nil), never an error the caller could crash on.
type Store interface {
	Get(ctx context.Context, sid string) (*models.Session, error)
	Put(ctx context.Context, sid string, sess *models.Session, ttl time.Duration) error
	Delete(ctx context.Context, sid string) error
}
