// Package realtime delivers per-tenant collection snapshots to live
// subscribers. Each snapshot is the full collection; consumers replace
// their mirror instead of patching it.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/enum"
)

const defaultSubscriberCapacity = 8

// Snapshot is one delivery of a tenant's collection. FromCache marks a
// replay of the last known state rather than a fresh read. Docs must be
// treated as read-only since subscribers share them.
type Snapshot[T any] struct {
	Collection enum.Collection
	TenantID   uuid.UUID
	Docs       []T
	FromCache  bool
	Err        error
}

// Loader reads the current state of a tenant's collection.
type Loader[T any] func(ctx context.Context, tenantID uuid.UUID) ([]T, error)

// Subscription is a live stream of snapshots for one tenant.
type Subscription[T any] struct {
	C      <-chan Snapshot[T]
	cancel func()
}

// Close stops delivery and closes C. It is safe to call more than once.
func (s Subscription[T]) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// FeedOption customizes Feed construction.
type FeedOption func(*feedOptions)

type feedOptions struct {
	logger   *slog.Logger
	capacity int
}

// WithLogger injects the logger used for load failures and drops.
func WithLogger(logger *slog.Logger) FeedOption {
	return func(o *feedOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithSubscriberCapacity overrides the buffered channel size per subscriber.
func WithSubscriberCapacity(capacity int) FeedOption {
	return func(o *feedOptions) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// Feed fans snapshots of one collection out to subscribers keyed by tenant.
// A subscriber only ever receives snapshots of the tenant it subscribed to.
type Feed[T any] struct {
	collection enum.Collection
	load       Loader[T]
	logger     *slog.Logger
	capacity   int

	mu    sync.RWMutex
	subs  map[uuid.UUID]map[*subscriber[T]]struct{}
	cache map[uuid.UUID][]T

	// loadMu orders loads so a subscriber never sees an older snapshot
	// after a newer one.
	loadMu sync.Mutex
}

// NewFeed creates a feed for collection backed by load.
func NewFeed[T any](collection enum.Collection, load Loader[T], opts ...FeedOption) *Feed[T] {
	o := feedOptions{logger: slog.Default(), capacity: defaultSubscriberCapacity}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Feed[T]{
		collection: collection,
		load:       load,
		logger:     o.logger,
		capacity:   o.capacity,
		subs:       map[uuid.UUID]map[*subscriber[T]]struct{}{},
		cache:      map[uuid.UUID][]T{},
	}
}

// Collection returns the collection this feed serves.
func (f *Feed[T]) Collection() enum.Collection {
	return f.collection
}

// Subscribe registers for tenantID. The last known state, if any, is
// delivered first with FromCache set, followed by a fresh read.
func (f *Feed[T]) Subscribe(ctx context.Context, tenantID uuid.UUID) Subscription[T] {
	sub := newSubscriber[T](f.capacity)

	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	f.mu.Lock()
	if f.subs[tenantID] == nil {
		f.subs[tenantID] = map[*subscriber[T]]struct{}{}
	}
	f.subs[tenantID][sub] = struct{}{}
	cached, hasCache := f.cache[tenantID]
	f.mu.Unlock()

	if hasCache {
		sub.deliver(Snapshot[T]{Collection: f.collection, TenantID: tenantID, Docs: cached, FromCache: true})
	}
	sub.deliver(f.fetch(ctx, tenantID))

	return Subscription[T]{
		C: sub.channel(),
		cancel: func() {
			f.removeSubscriber(tenantID, sub)
		},
	}
}

// Refresh reloads tenantID and pushes the result to its subscribers. With
// no subscribers the cached state is dropped instead.
func (f *Feed[T]) Refresh(ctx context.Context, tenantID uuid.UUID) {
	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	subs := f.subscribersOf(tenantID)
	if len(subs) == 0 {
		f.mu.Lock()
		delete(f.cache, tenantID)
		f.mu.Unlock()
		return
	}

	snap := f.fetch(ctx, tenantID)
	for _, sub := range subs {
		sub.deliver(snap)
	}
}

// Subscribers returns the number of live subscriptions for tenantID.
func (f *Feed[T]) Subscribers(tenantID uuid.UUID) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[tenantID])
}

func (f *Feed[T]) fetch(ctx context.Context, tenantID uuid.UUID) Snapshot[T] {
	docs, err := f.load(ctx, tenantID)
	if err != nil {
		f.logger.Error("realtime load failed",
			"collection", f.collection.String(),
			"tenant_id", tenantID,
			"error", err)
		return Snapshot[T]{Collection: f.collection, TenantID: tenantID, Err: err}
	}
	if docs == nil {
		docs = []T{}
	}

	f.mu.Lock()
	f.cache[tenantID] = docs
	f.mu.Unlock()

	return Snapshot[T]{Collection: f.collection, TenantID: tenantID, Docs: docs}
}

func (f *Feed[T]) subscribersOf(tenantID uuid.UUID) []*subscriber[T] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	live := f.subs[tenantID]
	if len(live) == 0 {
		return nil
	}
	items := make([]*subscriber[T], 0, len(live))
	for sub := range live {
		items = append(items, sub)
	}
	return items
}

func (f *Feed[T]) removeSubscriber(tenantID uuid.UUID, sub *subscriber[T]) {
	f.mu.Lock()
	if subs := f.subs[tenantID]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(f.subs, tenantID)
		}
	}
	f.mu.Unlock()
	sub.close()
}

type subscriber[T any] struct {
	mu     sync.Mutex
	ch     chan Snapshot[T]
	closed bool
}

func newSubscriber[T any](capacity int) *subscriber[T] {
	if capacity <= 0 {
		capacity = defaultSubscriberCapacity
	}
	return &subscriber[T]{ch: make(chan Snapshot[T], capacity)}
}

func (s *subscriber[T]) channel() <-chan Snapshot[T] {
	return s.ch
}

// deliver never blocks. When the buffer is full the oldest snapshot is
// discarded; every snapshot is a full replacement so only the newest matters.
func (s *subscriber[T]) deliver(snap Snapshot[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

func (s *subscriber[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
