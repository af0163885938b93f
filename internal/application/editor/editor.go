// Package editor keeps one quote draft per tenant and turns it into a
// saved quote.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/pricing"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/pkg/apperror"
)

// SettingsSource provides the bank info used as the note of a fresh draft.
type SettingsSource interface {
	GetByTenant(ctx context.Context, tenantID uuid.UUID) (*entity.CompanySettings, error)
}

// QuoteStore persists saved quotes.
type QuoteStore interface {
	Create(ctx context.Context, quote *entity.Quote) error
}

// View is a draft together with its live totals.
type View struct {
	Draft  Draft          `json:"draft"`
	Totals pricing.Totals `json:"totals"`
}

func newView(d Draft) View {
	return View{Draft: d.clone(), Totals: d.Totals()}
}

type Option func(*Editor)

func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithNotifier(n repository.ChangeNotifier) Option {
	return func(e *Editor) { e.notifier = n }
}

func WithClock(clock func() time.Time) Option {
	return func(e *Editor) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// Editor owns the drafts. All changes go through Update so concurrent
// requests for the same tenant never interleave a read-modify-write.
type Editor struct {
	settings SettingsSource
	quotes   QuoteStore
	notifier repository.ChangeNotifier
	logger   *slog.Logger
	clock    func() time.Time

	mu     sync.Mutex
	drafts map[uuid.UUID]*Draft
}

// New creates an editor and subscribes it to bus when bus is not nil.
func New(settings SettingsSource, quotes QuoteStore, bus *Bus, opts ...Option) *Editor {
	e := &Editor{
		settings: settings,
		quotes:   quotes,
		logger:   slog.Default(),
		clock:    time.Now,
		drafts:   map[uuid.UUID]*Draft{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if bus != nil {
		bus.Subscribe(e.handleLoadQuote)
	}
	return e
}

// Get returns the tenant's draft, creating a fresh one when none exists.
func (e *Editor) Get(ctx context.Context, tenantID uuid.UUID) (View, error) {
	return e.Update(ctx, tenantID, func(*Draft) error { return nil })
}

// Update applies the mutations in order. If any fails the draft is left
// as it was before the call.
func (e *Editor) Update(ctx context.Context, tenantID uuid.UUID, muts ...Mutation) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.draftLocked(ctx, tenantID)
	if err != nil {
		return View{}, err
	}

	next := current.clone()
	for _, m := range muts {
		if err := m(&next); err != nil {
			return View{}, err
		}
	}
	e.drafts[tenantID] = &next
	return newView(next), nil
}

// Reset discards the draft and starts a fresh one.
func (e *Editor) Reset(ctx context.Context, tenantID uuid.UUID) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.drafts, tenantID)
	d, err := e.draftLocked(ctx, tenantID)
	if err != nil {
		return View{}, err
	}
	return newView(*d), nil
}

// Save persists the draft as a quote. The draft is kept so the operator
// can keep editing and save another version.
func (e *Editor) Save(ctx context.Context, tenantID uuid.UUID) (*entity.Quote, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.draftLocked(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(d.Items) == 0 {
		return nil, apperror.NewFieldValidationError(map[string]string{"items": "add at least one item"})
	}

	quote := d.ToQuote(tenantID, e.clock())
	if err := e.quotes.Create(ctx, &quote); err != nil {
		return nil, fmt.Errorf("save quote: %w", err)
	}
	e.logger.Info("quote saved",
		"tenant_id", tenantID,
		"quote_id", quote.ID,
		"quote_no", quote.QuoteNo,
		"total", quote.TotalAmount.String())

	if e.notifier != nil {
		e.notifier.Notify(ctx, enum.CollectionQuotes, tenantID)
	}
	return &quote, nil
}

func (e *Editor) handleLoadQuote(ctx context.Context, evt LoadQuote) error {
	_, err := e.Update(ctx, evt.TenantID, func(d *Draft) error {
		d.ClientName = evt.ClientName
		d.ClientPhone = evt.ClientPhone
		d.ClientEmail = evt.ClientEmail
		d.Items = entity.CloneItems(evt.Items)
		d.Note = evt.Note
		return nil
	})
	if err == nil {
		e.logger.Debug("draft loaded", "tenant_id", evt.TenantID, "source", evt.Source, "source_id", evt.SourceID)
	}
	return err
}

func (e *Editor) draftLocked(ctx context.Context, tenantID uuid.UUID) (*Draft, error) {
	if d, ok := e.drafts[tenantID]; ok {
		return d, nil
	}

	var bankInfo string
	if e.settings != nil {
		s, err := e.settings.GetByTenant(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		if s != nil {
			bankInfo = s.BankInfo
		}
	}
	d := NewDraft(e.clock(), bankInfo)
	e.drafts[tenantID] = &d
	return &d, nil
}
