package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and local runs.
// State is lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	clock    func() time.Time
}

type memorySession struct {
	values    map[string]string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession), clock: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, sessionID, key string) (string, error) {
	if err := validate(sessionID, key); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return "", ErrNotFound
	}
	if s.clock().After(sess.expiresAt) {
		delete(s.sessions, sessionID)
		return "", ErrNotFound
	}
	v, ok := sess.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set writes key and pushes the whole session's expiry to now+ttl.
func (s *MemoryStore) Set(_ context.Context, sessionID, key, value string, ttl time.Duration) error {
	if err := validate(sessionID, key); err != nil {
		return err
	}
	if ttl <= 0 {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || s.clock().After(sess.expiresAt) {
		sess = memorySession{values: make(map[string]string)}
	}
	sess.values[key] = value
	sess.expiresAt = s.clock().Add(ttl)
	s.sessions[sessionID] = sess
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
