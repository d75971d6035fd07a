// Package live keeps the latest full snapshot of each collection and fans
// replacements out to subscribers.
package live

import (
	"context"
	"slices"
	"sync"
)

type Collection string

const (
	Bookings Collection = "bookings"
	Spaces   Collection = "spaces"
	Users    Collection = "users"
)

func (c Collection) Valid() bool {
	switch c {
	case Bookings, Spaces, Users:
		return true
	}
	return false
}

// Snapshot is a complete, point-in-time copy of a collection. Consumers treat
// each one as a full replacement and must not modify Items.
type Snapshot[T any] struct {
	Collection Collection `json:"collection"`
	Version    uint64     `json:"version"`
	Items      []T        `json:"items"`
}

// Loader reads the whole collection from the store.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Feed holds the current snapshot of one collection.
type Feed[T any] struct {
	name Collection
	load Loader[T]

	// reloading orders load and publish, so an older read never lands last
	reloading sync.Mutex

	mu      sync.RWMutex
	current Snapshot[T]
	subs    map[int]chan Snapshot[T]
	next    int
}

func NewFeed[T any](name Collection, load Loader[T]) *Feed[T] {
	return &Feed[T]{
		name:    name,
		load:    load,
		current: Snapshot[T]{Collection: name, Items: []T{}},
		subs:    make(map[int]chan Snapshot[T]),
	}
}

func (f *Feed[T]) Name() Collection { return f.name }

// Current returns the latest snapshot.
func (f *Feed[T]) Current() Snapshot[T] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// Items returns the latest snapshot's items.
func (f *Feed[T]) Items() []T {
	return f.Current().Items
}

// Reload reads the collection and publishes it.
func (f *Feed[T]) Reload(ctx context.Context) error {
	f.reloading.Lock()
	defer f.reloading.Unlock()

	items, err := f.load(ctx)
	if err != nil {
		return err
	}
	f.Publish(items)
	return nil
}

// Publish replaces the snapshot and delivers it to every subscriber. A slow
// subscriber loses the snapshot it has not read yet, never the newest.
func (f *Feed[T]) Publish(items []T) Snapshot[T] {
	own := slices.Clone(items)
	if own == nil {
		own = []T{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = Snapshot[T]{Collection: f.name, Version: f.current.Version + 1, Items: own}
	for _, ch := range f.subs {
		offer(ch, f.current)
	}
	return f.current
}

// offer performs a latest-wins send on a channel of capacity one.
func offer[T any](ch chan Snapshot[T], s Snapshot[T]) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// Subscribe returns a channel that first yields the current snapshot and then
// every replacement. The channel is closed when ctx ends.
func (f *Feed[T]) Subscribe(ctx context.Context) <-chan Snapshot[T] {
	ch := make(chan Snapshot[T], 1)

	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = ch
	ch <- f.current
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs, id)
		close(ch)
		f.mu.Unlock()
	}()

	return ch
}

// Subscribers reports the number of active subscriptions.
func (f *Feed[T]) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
