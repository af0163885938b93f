package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
)

// Notice announces a change to one tenant's collection.
type Notice struct {
	Instance   string          `json:"instance"`
	Collection enum.Collection `json:"collection"`
	TenantID   uuid.UUID       `json:"tenant_id"`
}

// Publisher forwards notices to other instances.
type Publisher interface {
	Publish(ctx context.Context, notice Notice) error
}

type refresher interface {
	Refresh(ctx context.Context, tenantID uuid.UUID)
}

// Hub routes change notices to the feeds registered for a collection and
// to an optional cross-instance publisher.
type Hub struct {
	instance string
	logger   *slog.Logger

	mu        sync.RWMutex
	feeds     map[enum.Collection][]refresher
	publisher Publisher
}

// NewHub creates a hub. instance identifies this process in published
// notices so it can ignore its own echoes.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		instance: uuid.NewString(),
		logger:   logger,
		feeds:    map[enum.Collection][]refresher{},
	}
}

// Instance returns the identifier stamped on published notices.
func (h *Hub) Instance() string {
	return h.instance
}

// Register attaches a feed to the collection it serves.
func (h *Hub) Register(collection enum.Collection, feed refresher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.feeds[collection] = append(h.feeds[collection], feed)
}

// SetPublisher enables cross-instance fan-out.
func (h *Hub) SetPublisher(p Publisher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publisher = p
}

// Notify refreshes local subscribers and publishes the change. It detaches
// from ctx cancellation so a finished request still completes the fan-out.
func (h *Hub) Notify(ctx context.Context, collection enum.Collection, tenantID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	h.Deliver(ctx, collection, tenantID)

	h.mu.RLock()
	pub := h.publisher
	h.mu.RUnlock()
	if pub == nil {
		return
	}
	notice := Notice{Instance: h.instance, Collection: collection, TenantID: tenantID}
	if err := pub.Publish(ctx, notice); err != nil {
		h.logger.Warn("publish change notice failed",
			"collection", collection.String(),
			"tenant_id", tenantID,
			"error", err)
	}
}

// Deliver refreshes local subscribers only.
func (h *Hub) Deliver(ctx context.Context, collection enum.Collection, tenantID uuid.UUID) {
	h.mu.RLock()
	feeds := append([]refresher(nil), h.feeds[collection]...)
	h.mu.RUnlock()

	for _, f := range feeds {
		f.Refresh(ctx, tenantID)
	}
}

// HandleNotice applies a notice received from another instance.
func (h *Hub) HandleNotice(ctx context.Context, notice Notice) {
	if notice.Instance == h.instance || !notice.Collection.Valid() || notice.TenantID == uuid.Nil {
		return
	}
	h.Deliver(ctx, notice.Collection, notice.TenantID)
}

var _ repository.ChangeNotifier = (*Hub)(nil)

// Feeds are the live collections a sync session subscribes to.
type Feeds struct {
	Settings     *Feed[entity.CompanySettings]
	Templates    *Feed[entity.ServiceTemplate]
	NewInquiries *Feed[entity.Inquiry]
}

// NewFeeds builds the feeds over the repositories and registers them on hub.
// The settings feed yields the stored document or, before the first save,
// the defaults without persisting them.
func NewFeeds(
	hub *Hub,
	settingsRepo repository.SettingsRepository,
	templateRepo repository.TemplateRepository,
	inquiryRepo repository.InquiryRepository,
	opts ...FeedOption,
) *Feeds {
	feeds := &Feeds{
		Settings: NewFeed(enum.CollectionSettings, func(ctx context.Context, tenantID uuid.UUID) ([]entity.CompanySettings, error) {
			settings, err := settingsRepo.GetByTenant(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			if settings == nil {
				settings = entity.DefaultCompanySettings(tenantID)
			}
			return []entity.CompanySettings{*settings}, nil
		}, opts...),
		Templates: NewFeed(enum.CollectionTemplates, templateRepo.List, opts...),
		NewInquiries: NewFeed(enum.CollectionInquiries, func(ctx context.Context, tenantID uuid.UUID) ([]entity.Inquiry, error) {
			return inquiryRepo.ListByStatus(ctx, tenantID, enum.InquiryStatusNew)
		}, opts...),
	}

	hub.Register(enum.CollectionSettings, feeds.Settings)
	hub.Register(enum.CollectionTemplates, feeds.Templates)
	hub.Register(enum.CollectionInquiries, feeds.NewInquiries)
	return feeds
}
