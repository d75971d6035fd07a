package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/memodb-io/roombook/internal/auth"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps session identities as JSON under session:<id>.
type SessionStore struct {
	rdb redis.Cmdable
}

func NewSessionStore(rdb redis.Cmdable) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Put(ctx context.Context, sessionID string, v auth.Viewer, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+sessionID, raw, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (auth.Viewer, error) {
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return auth.Viewer{}, auth.ErrSessionNotFound
	}
	if err != nil {
		return auth.Viewer{}, err
	}
	var v auth.Viewer
	if err := json.Unmarshal(raw, &v); err != nil {
		return auth.Viewer{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return v, nil
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
