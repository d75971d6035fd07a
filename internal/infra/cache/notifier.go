package cache

import (
	"context"
	"fmt"

	"github.com/memodb-io/roombook/internal/live"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier broadcasts collection invalidations over Redis pub/sub so every
// instance reloads its snapshot.
type Notifier struct {
	rdb     *redis.Client
	channel string
	log     *zap.Logger
}

func NewNotifier(rdb *redis.Client, channel string, log *zap.Logger) *Notifier {
	return &Notifier{rdb: rdb, channel: channel, log: log}
}

func (n *Notifier) Notify(ctx context.Context, c live.Collection) error {
	if err := n.rdb.Publish(ctx, n.channel, string(c)).Err(); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}
	return nil
}

// Listen calls subscribed once the subscription is confirmed and again after
// every reconnect, and fn for every invalidation, until ctx ends.
func (n *Notifier) Listen(ctx context.Context, subscribed func(), fn func(live.Collection)) error {
	sub := n.rdb.Subscribe(ctx, n.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", n.channel, err)
	}
	subscribed()

	ch := sub.ChannelWithSubscriptions()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription %s closed", n.channel)
			}
			switch m := msg.(type) {
			case *redis.Subscription:
				if m.Kind == "subscribe" {
					subscribed()
				}
			case *redis.Message:
				c := live.Collection(m.Payload)
				if !c.Valid() {
					n.log.Sugar().Warnw("ignoring unknown live collection", "payload", m.Payload)
					continue
				}
				fn(c)
			}
		}
	}
}
