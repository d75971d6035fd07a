package auth

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore caches the identity fetched at session start so requests never
// re-read the user record.
type SessionStore interface {
	Put(ctx context.Context, sessionID string, v Viewer, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (Viewer, error)
	Delete(ctx context.Context, sessionID string) error
}
