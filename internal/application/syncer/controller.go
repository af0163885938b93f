// Package syncer keeps a live mirror of one tenant scope's settings,
// templates and unresolved inquiries, and seeds the default catalog into
// an empty owner catalog.
package syncer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/catalog"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/internal/infrastructure/metrics"
	"github.com/sangkips/quotecrm/internal/infrastructure/realtime"
)

// Seeder inserts the default catalog when a tenant has none.
type Seeder interface {
	SeedIfEmpty(ctx context.Context, tenantID uuid.UUID, templates []entity.ServiceTemplate) (bool, error)
}

// Option customizes a Controller.
type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithNotifier announces a completed seed so every subscriber reloads.
func WithNotifier(n repository.ChangeNotifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithDefaults overrides the catalog seeded into empty tenants.
func WithDefaults(fn func(tenantID uuid.UUID) []entity.ServiceTemplate) Option {
	return func(c *Controller) {
		if fn != nil {
			c.defaults = fn
		}
	}
}

// Controller mirrors the collections of one scope at a time. All snapshots
// are applied on a single goroutine per scope, so state changes are
// serialized like events on one loop.
type Controller struct {
	feeds    *realtime.Feeds
	seeder   Seeder
	notifier repository.ChangeNotifier
	defaults func(tenantID uuid.UUID) []entity.ServiceTemplate
	logger   *slog.Logger
	metrics  *metrics.Metrics

	// scopeMu serializes SetScope and Close.
	scopeMu sync.Mutex

	mu       sync.Mutex
	state    State
	frozen   map[enum.Collection]bool
	received map[enum.Collection]bool
	current  *session
	closed   bool
	updates  chan struct{}
}

type session struct {
	scope  entity.TenantScope
	cancel context.CancelFunc
	done   chan struct{}
	closer []func()
}

// New creates an idle controller. Call SetScope to start mirroring.
func New(feeds *realtime.Feeds, seeder Seeder, opts ...Option) *Controller {
	c := &Controller{
		feeds:    feeds,
		seeder:   seeder,
		defaults: catalog.ForTenant,
		logger:   slog.Default(),
		frozen:   map[enum.Collection]bool{},
		received: map[enum.Collection]bool{},
		updates:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Updates signals after every state change. Signals coalesce; read State
// to get the latest mirror.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// State returns a copy of the current mirror.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SetScope tears down every subscription of the previous scope, waits for
// its loop to exit, then subscribes for scope. An invalid scope leaves the
// controller idle.
func (c *Controller) SetScope(ctx context.Context, scope entity.TenantScope) {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	old := c.current
	c.current = nil
	c.mu.Unlock()

	c.stop(old)

	c.mu.Lock()
	c.state = emptyState(scope)
	c.frozen = map[enum.Collection]bool{}
	c.received = map[enum.Collection]bool{}
	c.mu.Unlock()

	if !scope.Valid() {
		c.signal()
		return
	}

	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess := &session{scope: scope, cancel: cancel, done: make(chan struct{})}

	settings := c.feeds.Settings.Subscribe(sessCtx, scope.TenantID)
	templates := c.feeds.Templates.Subscribe(sessCtx, scope.TenantID)
	sess.closer = append(sess.closer, settings.Close, templates.Close)

	var inquiries <-chan realtime.Snapshot[entity.Inquiry]
	if !scope.Public {
		sub := c.feeds.NewInquiries.Subscribe(sessCtx, scope.TenantID)
		sess.closer = append(sess.closer, sub.Close)
		inquiries = sub.C
	}

	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()

	c.metrics.SyncSessionOpened()
	c.logger.Debug("sync scope started", "tenant_id", scope.TenantID, "public", scope.Public)

	go c.loop(sessCtx, sess, settings.C, templates.C, inquiries)
}

// Close stops the current scope. The controller cannot be reused.
func (c *Controller) Close() {
	c.scopeMu.Lock()
	defer c.scopeMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	old := c.current
	c.current = nil
	c.mu.Unlock()

	c.stop(old)
}

func (c *Controller) stop(sess *session) {
	if sess == nil {
		return
	}
	sess.cancel()
	for _, closeFn := range sess.closer {
		closeFn()
	}
	<-sess.done
	c.metrics.SyncSessionClosed()
	c.logger.Debug("sync scope stopped", "tenant_id", sess.scope.TenantID, "public", sess.scope.Public)
}

func (c *Controller) loop(
	ctx context.Context,
	sess *session,
	settings <-chan realtime.Snapshot[entity.CompanySettings],
	templates <-chan realtime.Snapshot[entity.ServiceTemplate],
	inquiries <-chan realtime.Snapshot[entity.Inquiry],
) {
	defer close(sess.done)

	for settings != nil || templates != nil || inquiries != nil {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-settings:
			if !ok {
				settings = nil
				continue
			}
			c.applySettings(sess, snap)
		case snap, ok := <-templates:
			if !ok {
				templates = nil
				continue
			}
			c.applyTemplates(ctx, sess, snap)
		case snap, ok := <-inquiries:
			if !ok {
				inquiries = nil
				continue
			}
			c.applyInquiries(sess, snap)
		}
	}
}

// accept reports whether snap may touch the mirror: it must belong to the
// live session's tenant and its collection must not be frozen by an
// earlier error. An error snapshot freezes the collection.
func (c *Controller) accept(sess *session, collection enum.Collection, tenantID uuid.UUID, err error) bool {
	if c.current != sess || tenantID != sess.scope.TenantID {
		return false
	}
	if c.frozen[collection] {
		return false
	}
	if err != nil {
		c.frozen[collection] = true
		if c.state.Errors == nil {
			c.state.Errors = map[enum.Collection]string{}
		}
		c.state.Errors[collection] = err.Error()
		c.state.Version++
		c.logger.Error("subscription failed, mirror frozen",
			"collection", collection.String(),
			"tenant_id", tenantID,
			"error", err)
		return false
	}
	return true
}

func (c *Controller) applySettings(sess *session, snap realtime.Snapshot[entity.CompanySettings]) {
	c.mu.Lock()
	ok := c.accept(sess, enum.CollectionSettings, snap.TenantID, snap.Err)
	if ok {
		if len(snap.Docs) > 0 {
			c.state.Settings = snap.Docs[0]
		} else {
			c.state.Settings = *entity.DefaultCompanySettings(sess.scope.TenantID)
		}
		c.markReceived(enum.CollectionSettings)
	}
	c.mu.Unlock()

	if ok {
		c.metrics.SnapshotApplied(enum.CollectionSettings.String(), snap.FromCache)
	}
	c.signal()
}

func (c *Controller) applyTemplates(ctx context.Context, sess *session, snap realtime.Snapshot[entity.ServiceTemplate]) {
	c.mu.Lock()
	ok := c.accept(sess, enum.CollectionTemplates, snap.TenantID, snap.Err)
	shouldSeed := false
	if ok {
		c.state.Templates = append([]entity.ServiceTemplate(nil), snap.Docs...)
		c.markReceived(enum.CollectionTemplates)
		shouldSeed = len(snap.Docs) == 0 && !snap.FromCache && !sess.scope.Public && c.state.Seed == Unseeded
	}
	c.mu.Unlock()

	if ok {
		c.metrics.SnapshotApplied(enum.CollectionTemplates.String(), snap.FromCache)
	}
	c.signal()

	if shouldSeed {
		c.seed(ctx, sess)
	}
}

func (c *Controller) applyInquiries(sess *session, snap realtime.Snapshot[entity.Inquiry]) {
	c.mu.Lock()
	ok := c.accept(sess, enum.CollectionInquiries, snap.TenantID, snap.Err)
	if ok {
		c.state.NewInquiries = append([]entity.Inquiry{}, snap.Docs...)
		c.state.NewInquiryCount = len(snap.Docs)
		c.state.Version++
	}
	c.mu.Unlock()

	if ok {
		c.metrics.SnapshotApplied(enum.CollectionInquiries.String(), snap.FromCache)
	}
	c.signal()
}

func (c *Controller) seed(ctx context.Context, sess *session) {
	tenantID := sess.scope.TenantID
	inserted, err := c.seeder.SeedIfEmpty(ctx, tenantID, c.defaults(tenantID))
	if err != nil {
		c.logger.Error("seeding default templates failed", "tenant_id", tenantID, "error", err)
		return
	}

	c.mu.Lock()
	if c.current == sess {
		c.state.Seed = Seeded
		c.state.Version++
	}
	c.mu.Unlock()
	c.signal()

	if !inserted {
		return
	}
	c.metrics.TemplatesSeeded()
	c.logger.Info("seeded default templates", "tenant_id", tenantID)

	if c.notifier != nil {
		c.notifier.Notify(ctx, enum.CollectionTemplates, tenantID)
	} else {
		c.feeds.Templates.Refresh(ctx, tenantID)
	}
}

// markReceived bumps the version and flips Ready once settings and
// templates have both arrived. Callers hold c.mu.
func (c *Controller) markReceived(collection enum.Collection) {
	c.received[collection] = true
	c.state.Version++
	c.state.Ready = c.received[enum.CollectionSettings] && c.received[enum.CollectionTemplates]
}

func (c *Controller) signal() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}
