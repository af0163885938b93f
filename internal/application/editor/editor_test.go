package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/infrastructure/database/dbtest"
	"github.com/sangkips/quotecrm/internal/infrastructure/repository"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, time.March, 7, 15, 4, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	editor   *Editor
	bus      *Bus
	tenantID uuid.UUID
	notes    *notices
}

type notices struct {
	mu   sync.Mutex
	seen []enum.Collection
}

func (n *notices) Notify(_ context.Context, c enum.Collection, _ uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seen = append(n.seen, c)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	tenantID := uuid.New()

	settingsRepo := repository.NewSettingsRepository(db)
	settings := entity.DefaultCompanySettings(tenantID)
	settings.BankInfo = "Bank 012 / 1234-5678"
	require.NoError(t, settingsRepo.Create(context.Background(), settings))

	bus := NewBus()
	n := &notices{}
	e := New(settingsRepo, repository.NewQuoteRepository(db), bus,
		WithClock(func() time.Time { return fixedNow }),
		WithNotifier(n))
	return &fixture{db: db, editor: e, bus: bus, tenantID: tenantID, notes: n}
}

func videoTemplate() entity.ServiceTemplate {
	return entity.ServiceTemplate{ID: uuid.New(), Name: "Video", Items: []entity.TemplateItem{
		{Description: "script", Unit: "式", PriceMin: 3000, PriceMax: 8001},
		{Description: "shoot", Unit: "天", PriceMin: 12000, PriceMax: 25000},
	}}
}

func TestEditor_FreshDraftDefaults(t *testing.T) {
	f := newFixture(t)

	view, err := f.editor.Get(context.Background(), f.tenantID)
	require.NoError(t, err)

	d := view.Draft
	assert.Equal(t, "QUOTATION", d.Title)
	assert.Equal(t, 0.05, d.TaxRate)
	assert.Zero(t, d.Discount)
	assert.Equal(t, "2024-03-07", d.QuoteDate)
	assert.Regexp(t, `^Q202403\d{2}$`, d.QuoteNo)
	assert.Equal(t, "Bank 012 / 1234-5678", d.Note)
	assert.Empty(t, d.Items)
	assert.True(t, view.Totals.Total.IsZero())
}

func TestEditor_DraftWithoutSettings(t *testing.T) {
	f := newFixture(t)

	view, err := f.editor.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, view.Draft.Note)
}

func TestEditor_ItemOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.editor.Update(ctx, f.tenantID, AddTemplate(videoTemplate()), AddTextRow(), AddManualItem())
	require.NoError(t, err)
	items := view.Draft.Items
	require.Len(t, items, 4)
	assert.Equal(t, entity.Amount(5500), items[0].UnitPrice)
	assert.Equal(t, entity.Amount(18500), items[1].UnitPrice)
	assert.True(t, items[2].IsText())
	assert.Equal(t, TextRowDescription, items[2].Description)
	assert.Equal(t, ManualItemDescription, items[3].Description)
	assert.Equal(t, ManualItemUnit, items[3].Unit)
	assert.True(t, items[3].IsManual)
	assert.Equal(t, "24000", view.Totals.Subtotal.String())
	assert.Equal(t, "25200", view.Totals.Total.String())

	price := entity.Amount(1000)
	qty := entity.Amount(2)
	view, err = f.editor.Update(ctx, f.tenantID, UpdateItem(items[3].ID, ItemPatch{UnitPrice: &price, Quantity: &qty}))
	require.NoError(t, err)
	assert.Equal(t, "26000", view.Totals.Subtotal.String())

	view, err = f.editor.Update(ctx, f.tenantID, MoveItem(3, 0))
	require.NoError(t, err)
	assert.Equal(t, items[3].ID, view.Draft.Items[0].ID)
	assert.Equal(t, items[0].ID, view.Draft.Items[1].ID)

	view, err = f.editor.Update(ctx, f.tenantID, DeleteItem(items[2].ID))
	require.NoError(t, err)
	assert.Len(t, view.Draft.Items, 3)
}

func TestEditor_FailedMutationLeavesDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.editor.Update(ctx, f.tenantID, AddManualItem())
	require.NoError(t, err)

	_, err = f.editor.Update(ctx, f.tenantID, AddTextRow(), DeleteItem("missing"))
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)

	_, err = f.editor.Update(ctx, f.tenantID, MoveItem(0, 5))
	require.Error(t, err)

	after, err := f.editor.Get(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, before.Draft, after.Draft)
}

func TestEditor_AppendTerm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.editor.Update(ctx, f.tenantID, SetHeader(HeaderPatch{Note: ptr("")}))
	require.NoError(t, err)

	view, err := f.editor.Update(ctx, f.tenantID, AppendTerm("general"), AppendTerm("rush"))
	require.NoError(t, err)
	assert.Equal(t, "本報價單有效期限為 15 天。\n\n急件需加收 20% 費用。", view.Draft.Note)

	_, err = f.editor.Update(ctx, f.tenantID, AppendTerm("nope"))
	assert.Error(t, err)
}

func TestEditor_ApplyClientCopiesValues(t *testing.T) {
	f := newFixture(t)
	client := entity.Client{Name: "Acme", Phone: "0912345678", Email: "hi@acme.test"}

	view, err := f.editor.Update(context.Background(), f.tenantID, ApplyClient(client))
	require.NoError(t, err)
	client.Name = "Renamed"

	assert.Equal(t, "Acme", view.Draft.ClientName)
	assert.Equal(t, "hi@acme.test", view.Draft.ClientEmail)
}

func TestEditor_HeaderAndLiveTotals(t *testing.T) {
	f := newFixture(t)

	view, err := f.editor.Update(context.Background(), f.tenantID,
		AddManualItem(),
		UpdateItem("", ItemPatch{}),
	)
	require.Error(t, err, "empty id never matches")

	view, err = f.editor.Update(context.Background(), f.tenantID,
		AddTemplate(videoTemplate()),
		SetHeader(HeaderPatch{Discount: ptr(1000.0), TaxRate: ptr(0.0), Title: ptr("ESTIMATE")}),
	)
	require.NoError(t, err)
	assert.Equal(t, "ESTIMATE", view.Draft.Title)
	assert.Equal(t, "23000", view.Totals.Total.String())
}

func TestEditor_SaveRequiresItems(t *testing.T) {
	f := newFixture(t)

	_, err := f.editor.Save(context.Background(), f.tenantID)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields(), "items")

	var count int64
	require.NoError(t, f.db.Model(&entity.Quote{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEditor_SaveStoresComputedTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.editor.Update(ctx, f.tenantID,
		AddTemplate(videoTemplate()),
		AddTextRow(),
		SetHeader(HeaderPatch{ClientName: ptr("Acme"), Discount: ptr(500.0)}),
	)
	require.NoError(t, err)

	quote, err := f.editor.Save(ctx, f.tenantID)
	require.NoError(t, err)

	stored, err := repository.NewQuoteRepository(f.db).GetByID(ctx, f.tenantID, quote.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Acme", stored.ClientName)
	assert.Equal(t, "24675", stored.TotalAmount.String())
	assert.Len(t, stored.Items, 3)
	assert.True(t, fixedNow.Equal(stored.Timestamp))
	assert.Equal(t, []enum.Collection{enum.CollectionQuotes}, f.notes.seen)

	view, err := f.editor.Get(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Len(t, view.Draft.Items, 3, "the draft survives a save")
}

func TestEditor_Reset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.editor.Update(ctx, f.tenantID, AddManualItem(), SetHeader(HeaderPatch{Note: ptr("custom")}))
	require.NoError(t, err)

	view, err := f.editor.Reset(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Empty(t, view.Draft.Items)
	assert.Equal(t, "Bank 012 / 1234-5678", view.Draft.Note)
}

func TestEditor_LoadQuoteFromInquiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.editor.Update(ctx, f.tenantID, SetHeader(HeaderPatch{Title: ptr("KEEP"), Discount: ptr(100.0)}))
	require.NoError(t, err)

	inq := &entity.Inquiry{
		ID:          uuid.New(),
		TenantID:    f.tenantID,
		ClientName:  "Lin",
		ClientPhone: "0912000111",
		ClientEmail: "lin@example.com",
		Note:        "please call",
		Items:       []entity.LineItem{{ID: "a", Description: "kv", Quantity: 1, UnitPrice: 20000}},
	}
	require.NoError(t, f.bus.Publish(ctx, LoadQuoteFromInquiry(inq)))

	view, err := f.editor.Get(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, "Lin", view.Draft.ClientName)
	assert.Equal(t, "please call", view.Draft.Note)
	require.Len(t, view.Draft.Items, 1)
	assert.Equal(t, "KEEP", view.Draft.Title, "header fields other than contact are kept")
	assert.Equal(t, 100.0, view.Draft.Discount)

	inq.Items[0].Description = "changed"
	view, err = f.editor.Get(ctx, f.tenantID)
	require.NoError(t, err)
	assert.Equal(t, "kv", view.Draft.Items[0].Description, "loaded items are copies")
}

func TestBus_StopsOnFirstError(t *testing.T) {
	bus := NewBus()
	var calls []string
	bus.Subscribe(func(context.Context, LoadQuote) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	cancel := bus.Subscribe(func(context.Context, LoadQuote) error {
		calls = append(calls, "second")
		return nil
	})

	assert.Error(t, bus.Publish(context.Background(), LoadQuote{}))
	assert.Equal(t, []string{"first"}, calls)

	cancel()
	cancel()
}

func TestEditor_TenantsAreIsolated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := uuid.New()

	_, err := f.editor.Update(ctx, f.tenantID, AddManualItem())
	require.NoError(t, err)

	view, err := f.editor.Get(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, view.Draft.Items)
}

func ptr[T any](v T) *T { return &v }
