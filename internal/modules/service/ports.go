package service

import (
	"context"
	"sync"

	"github.com/memodb-io/roombook/internal/infra/blob"
	"github.com/memodb-io/roombook/internal/live"
	"github.com/memodb-io/roombook/internal/modules/model"
)

// LiveView is the read side of the live snapshots plus the change signal
// writers raise after a successful write. *live.Hub implements it.
type LiveView interface {
	Bookings() []model.Booking
	Spaces() []model.Space
	Users() []model.User
	Changed(ctx context.Context, c live.Collection)
}

// EventPublisher sends lifecycle events to the message bus.
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, v any) error
}

// InFlightGuard marks a key busy while a write on it is unsettled.
type InFlightGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Archiver stores the bookings a cascade is about to remove.
type Archiver interface {
	UploadJSON(ctx context.Context, keyPrefix string, data any) (*blob.UploadedMeta, error)
}

// LocalInFlight is an in-process InFlightGuard for single instances and tests.
type LocalInFlight struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

func NewLocalInFlight() *LocalInFlight {
	return &LocalInFlight{busy: make(map[string]struct{})}
}

func (l *LocalInFlight) Acquire(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.busy[key]; ok {
		return false, nil
	}
	l.busy[key] = struct{}{}
	return true, nil
}

func (l *LocalInFlight) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.busy, key)
	return nil
}
