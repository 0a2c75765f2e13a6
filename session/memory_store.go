package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tmsuite/console-gateway/models"
)

// MemoryStore is an in-process session store used in development and
// tests. Entries are kept as serialized JSON so the corrupt-entry
// tolerance of the redis store can be exercised the same way.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Get retrieves a session entry. Expired, absent, and corrupted entries
// all return (nil, nil).
func (s *MemoryStore) Get(ctx context.Context, sid string) (*models.Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[sid]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}

	var sess models.Session
	if err := json.Unmarshal(entry.data, &sess); err != nil {
		s.mu.Lock()
		delete(s.entries, sid)
		s.mu.Unlock()
		return nil, nil
	}

	return &sess, nil
}

// Put stores a session entry with the given TTL.
func (s *MemoryStore) Put(ctx context.Context, sid string, sess *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[sid] = memoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes a session entry. Deleting an absent entry is a no-op.
func (s *MemoryStore) Delete(ctx context.Context, sid string) error {
	s.mu.Lock()
	delete(s.entries, sid)
	s.mu.Unlock()
	return nil
}

// PutRaw stores raw bytes under a session ID, bypassing marshaling.
// Tests use it to plant corrupted entries.
func (s *MemoryStore) PutRaw(sid string, data []byte, ttl time.Duration) {
	s.mu.Lock()
	s.entries[sid] = memoryEntry{data: data, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

// Reset drops every entry.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	s.entries = make(map[string]memoryEntry)
	s.mu.Unlock()
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	now := time.Now()
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}
