package live

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/telemetry"
	"go.uber.org/zap"
)

// Notifier carries invalidations between instances. Listen calls subscribed
// every time the subscription is (re)established, then fn for each
// invalidation, until ctx ends or the subscription fails.
type Notifier interface {
	Notify(ctx context.Context, c Collection) error
	Listen(ctx context.Context, subscribed func(), fn func(Collection)) error
}

// Hub owns the bookings, spaces and users feeds of this instance. Writers call
// Changed after every successful write; the hub reloads the collection, either
// directly or when the invalidation comes back through the notifier.
type Hub struct {
	bookings *Feed[model.Booking]
	spaces   *Feed[model.Space]
	users    *Feed[model.User]

	notifier Notifier
	retry    *backoff.ExponentialBackOff
	log      *zap.Logger
}

// NewHub builds the feeds. A nil notifier reloads synchronously in Changed,
// which is what a single instance and the tests use.
func NewHub(bookings Loader[model.Booking], spaces Loader[model.Space], users Loader[model.User], notifier Notifier, log *zap.Logger) *Hub {
	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = 500 * time.Millisecond
	retry.MaxInterval = 30 * time.Second

	return &Hub{
		bookings: NewFeed(Bookings, bookings),
		spaces:   NewFeed(Spaces, spaces),
		users:    NewFeed(Users, users),
		notifier: notifier,
		retry:    retry,
		log:      log,
	}
}

func (h *Hub) BookingFeed() *Feed[model.Booking] { return h.bookings }
func (h *Hub) SpaceFeed() *Feed[model.Space]     { return h.spaces }
func (h *Hub) UserFeed() *Feed[model.User]       { return h.users }

func (h *Hub) Bookings() []model.Booking { return h.bookings.Items() }
func (h *Hub) Spaces() []model.Space     { return h.spaces.Items() }
func (h *Hub) Users() []model.User       { return h.users.Items() }

// LoadAll fills every feed from the store.
func (h *Hub) LoadAll(ctx context.Context) error {
	return errors.Join(
		h.reload(ctx, Bookings),
		h.reload(ctx, Spaces),
		h.reload(ctx, Users),
	)
}

// Changed signals that c was written. It never fails the caller's write: a
// notifier error falls back to a local reload and reload errors are logged.
func (h *Hub) Changed(ctx context.Context, c Collection) {
	if h.notifier != nil {
		err := h.notifier.Notify(ctx, c)
		if err == nil {
			return
		}
		h.log.Sugar().Warnw("live notify failed, reloading locally", "collection", c, "err", err)
	}
	if err := h.reload(ctx, c); err != nil {
		h.log.Sugar().Errorw("live reload failed", "collection", c, "err", err)
	}
}

// Run applies invalidations from the notifier until ctx ends. A failed or
// dropped subscription is retried with backoff. Every collection is reloaded
// once the subscription is up, so invalidations sent while it was down are
// not lost.
func (h *Hub) Run(ctx context.Context) {
	if h.notifier == nil {
		<-ctx.Done()
		return
	}

	h.retry.Reset()
	for {
		err := h.notifier.Listen(ctx, func() {
			h.retry.Reset()
			if err := h.LoadAll(ctx); err != nil {
				h.log.Sugar().Errorw("live reload after subscribe failed", "err", err)
			}
		}, func(c Collection) {
			if err := h.reload(ctx, c); err != nil {
				h.log.Sugar().Errorw("live reload failed", "collection", c, "err", err)
			}
		})
		if ctx.Err() != nil {
			return
		}

		wait := h.retry.NextBackOff()
		h.log.Sugar().Warnw("live invalidation listener stopped, retrying", "err", err, "retry_in", wait)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

func (h *Hub) reload(ctx context.Context, c Collection) error {
	var err error
	switch c {
	case Bookings:
		err = h.bookings.Reload(ctx)
	case Spaces:
		err = h.spaces.Reload(ctx)
	case Users:
		err = h.users.Reload(ctx)
	default:
		return fmt.Errorf("unknown collection %q", c)
	}

	result := "ok"
	if err != nil {
		result = "error"
		err = fmt.Errorf("reload %s: %w", c, err)
	}
	telemetry.SnapshotReloads.WithLabelValues(string(c), result).Inc()
	return err
}
