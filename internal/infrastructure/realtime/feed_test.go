package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu   sync.Mutex
	docs map[uuid.UUID][]string
	err  error
}

func newMemStore() *memStore {
	return &memStore{docs: map[uuid.UUID][]string{}}
}

func (m *memStore) set(tenant uuid.UUID, docs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[tenant] = docs
}

func (m *memStore) fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *memStore) load(_ context.Context, tenant uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]string(nil), m.docs[tenant]...), nil
}

func next[T any](t *testing.T, sub Subscription[T]) Snapshot[T] {
	t.Helper()
	select {
	case snap, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot[T]{}
}

func assertNoSnapshot[T any](t *testing.T, sub Subscription[T]) {
	t.Helper()
	select {
	case snap, ok := <-sub.C:
		if ok {
			t.Fatalf("unexpected snapshot %+v", snap)
		}
	default:
	}
}

func TestFeed_InitialSnapshotThenRefresh(t *testing.T) {
	store := newMemStore()
	tenant := uuid.New()
	store.set(tenant, "a")
	feed := NewFeed(enum.CollectionTemplates, store.load)

	sub := feed.Subscribe(context.Background(), tenant)
	defer sub.Close()

	first := next(t, sub)
	assert.False(t, first.FromCache)
	assert.Equal(t, []string{"a"}, first.Docs)
	assert.Equal(t, tenant, first.TenantID)

	store.set(tenant, "a", "b")
	feed.Refresh(context.Background(), tenant)
	assert.Equal(t, []string{"a", "b"}, next(t, sub).Docs)
}

func TestFeed_CachedSnapshotFirst(t *testing.T) {
	store := newMemStore()
	tenant := uuid.New()
	store.set(tenant, "a")
	feed := NewFeed(enum.CollectionTemplates, store.load)

	first := feed.Subscribe(context.Background(), tenant)
	next(t, first)

	second := feed.Subscribe(context.Background(), tenant)
	cached := next(t, second)
	fresh := next(t, second)
	assert.True(t, cached.FromCache)
	assert.Equal(t, []string{"a"}, cached.Docs)
	assert.False(t, fresh.FromCache)

	first.Close()
	second.Close()
}

func TestFeed_TenantIsolation(t *testing.T) {
	store := newMemStore()
	tenantA, tenantB := uuid.New(), uuid.New()
	store.set(tenantA, "a1")
	store.set(tenantB, "b1")
	feed := NewFeed(enum.CollectionTemplates, store.load)

	subA := feed.Subscribe(context.Background(), tenantA)
	defer subA.Close()
	next(t, subA)

	subB := feed.Subscribe(context.Background(), tenantB)
	defer subB.Close()
	next(t, subB)

	store.set(tenantB, "b1", "b2")
	feed.Refresh(context.Background(), tenantB)

	assert.Equal(t, []string{"b1", "b2"}, next(t, subB).Docs)
	assertNoSnapshot(t, subA)
}

func TestFeed_LoadErrorDelivered(t *testing.T) {
	store := newMemStore()
	tenant := uuid.New()
	feed := NewFeed(enum.CollectionTemplates, store.load)

	store.fail(errors.New("permission denied"))
	sub := feed.Subscribe(context.Background(), tenant)
	defer sub.Close()

	snap := next(t, sub)
	assert.EqualError(t, snap.Err, "permission denied")
	assert.Nil(t, snap.Docs)
}

func TestFeed_CloseStopsDelivery(t *testing.T) {
	store := newMemStore()
	tenant := uuid.New()
	feed := NewFeed(enum.CollectionTemplates, store.load)

	sub := feed.Subscribe(context.Background(), tenant)
	next(t, sub)
	sub.Close()
	sub.Close()

	assert.Equal(t, 0, feed.Subscribers(tenant))
	feed.Refresh(context.Background(), tenant)

	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestFeed_SlowSubscriberKeepsNewest(t *testing.T) {
	store := newMemStore()
	tenant := uuid.New()
	feed := NewFeed(enum.CollectionTemplates, store.load, WithSubscriberCapacity(1))

	sub := feed.Subscribe(context.Background(), tenant)
	defer sub.Close()

	for _, v := range []string{"1", "2", "3"} {
		store.set(tenant, v)
		feed.Refresh(context.Background(), tenant)
	}

	assert.Equal(t, []string{"3"}, next(t, sub).Docs)
}

func TestHub_NotifyRoutesByCollection(t *testing.T) {
	store := newMemStore()
	tenant := uuid.New()
	hub := NewHub(nil)
	templates := NewFeed(enum.CollectionTemplates, store.load)
	hub.Register(enum.CollectionTemplates, templates)

	sub := templates.Subscribe(context.Background(), tenant)
	defer sub.Close()
	next(t, sub)

	store.set(tenant, "x")
	hub.Notify(context.Background(), enum.CollectionQuotes, tenant)
	assertNoSnapshot(t, sub)

	hub.Notify(context.Background(), enum.CollectionTemplates, tenant)
	assert.Equal(t, []string{"x"}, next(t, sub).Docs)
}

type recordingPublisher struct {
	notices []Notice
}

func (p *recordingPublisher) Publish(_ context.Context, n Notice) error {
	p.notices = append(p.notices, n)
	return nil
}

func TestHub_PublishesAndIgnoresOwnEcho(t *testing.T) {
	store := newMemStore()
	tenant := uuid.New()
	hub := NewHub(nil)
	feed := NewFeed(enum.CollectionTemplates, store.load)
	hub.Register(enum.CollectionTemplates, feed)
	pub := &recordingPublisher{}
	hub.SetPublisher(pub)

	sub := feed.Subscribe(context.Background(), tenant)
	defer sub.Close()
	next(t, sub)

	hub.Notify(context.Background(), enum.CollectionTemplates, tenant)
	next(t, sub)
	require.Len(t, pub.notices, 1)
	assert.Equal(t, hub.Instance(), pub.notices[0].Instance)

	hub.HandleNotice(context.Background(), pub.notices[0])
	assertNoSnapshot(t, sub)

	hub.HandleNotice(context.Background(), Notice{Instance: "other", Collection: enum.CollectionTemplates, TenantID: tenant})
	next(t, sub)
}

func TestDecodeNotice(t *testing.T) {
	tenant := uuid.New()
	n, err := DecodeNotice([]byte(`{"instance":"i","collection":"templates","tenant_id":"` + tenant.String() + `"}`))
	require.NoError(t, err)
	assert.Equal(t, enum.CollectionTemplates, n.Collection)
	assert.Equal(t, tenant, n.TenantID)

	_, err = DecodeNotice([]byte(`{"collection":"users"}`))
	assert.Error(t, err)

	_, err = DecodeNotice([]byte(`nope`))
	assert.Error(t, err)

	assert.Equal(t, "quotecrm:changes", ChannelName("quotecrm"))
}
