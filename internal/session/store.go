package session

import (
	"context"
	"errors"
	"time"
)

// KeyRole is the session state key holding the dashboard role.
const KeyRole = "role"

var (
	// ErrNotFound is returned when the session or the key does not exist.
	ErrNotFound = errors.New("session: not found")
	// ErrInvalidArgument is returned for empty session ids or keys.
	ErrInvalidArgument = errors.New("session: invalid argument")
)

// Store is per-client key-value state that survives across page loads.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

// ReadRole performs the single role read for a client.
// An empty sessionID is an anonymous client and yields "" without touching the store.
// A missing session or key yields "" and ErrNotFound.
func ReadRole(ctx context.Context, s Store, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	if s == nil {
		return "", errors.New("session: store not configured")
	}
	return s.Get(ctx, sessionID, KeyRole)
}

func validate(sessionID, key string) error {
	if sessionID == "" || key == "" {
		return ErrInvalidArgument
	}
	return nil
}
