package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/catalog"
	"github.com/sangkips/quotecrm/internal/application/pricing"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/infrastructure/database/dbtest"
	"github.com/sangkips/quotecrm/internal/infrastructure/repository"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type memStore struct {
	mu        sync.Mutex
	inquiries []entity.Inquiry
	err       error
}

func (m *memStore) Create(_ context.Context, inquiry *entity.Inquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	inquiry.ID = uuid.New()
	m.inquiries = append(m.inquiries, *inquiry)
	return nil
}

type recordingDispatcher struct {
	enabled bool
	sent    []entity.InquiryNotification
}

func (d *recordingDispatcher) Enabled(s *entity.CompanySettings) bool {
	return d.enabled && s.EmailNotify.Data().Configured()
}

func (d *recordingDispatcher) Dispatch(_ entity.CompanySettings, n entity.InquiryNotification) {
	d.sent = append(d.sent, n)
}

var fixedNow = time.Date(2024, time.May, 20, 9, 30, 0, 0, time.UTC)

func validContact() Contact {
	return Contact{Name: "A", Email: "a@b.com", Phone: "+886912345678", Note: "call me"}
}

func templates() []entity.ServiceTemplate {
	return []entity.ServiceTemplate{
		{ID: uuid.New(), Name: "Video", Items: []entity.TemplateItem{
			{Description: "script", Unit: "式", PriceMin: 3000, PriceMax: 8000},
			{Description: "shoot", Unit: "天", PriceMin: 12000, PriceMax: 25001},
		}},
		{ID: uuid.New(), Name: "Design", Items: []entity.TemplateItem{
			{Description: "kv", Unit: "款", PriceMin: 10000, PriceMax: 30000},
		}},
	}
}

func newWorkflow(store Store, dispatcher Dispatcher, settings entity.CompanySettings, tpls []entity.ServiceTemplate) *Workflow {
	return New(Deps{
		Store:      store,
		Dispatcher: dispatcher,
		Clock:      func() time.Time { return fixedNow },
	}, settings, tpls)
}

func settingsWithRelay() entity.CompanySettings {
	s := entity.DefaultCompanySettings(uuid.New())
	s.Name = "Studio"
	s.EmailNotify = datatypes.NewJSONType(entity.EmailNotify{ServiceID: "s", TemplateID: "t", PublicKey: "k"})
	return *s
}

func toContactStep(t *testing.T, w *Workflow, ids ...uuid.UUID) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, w.Toggle(id))
	}
	require.NoError(t, w.Advance())
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Fields()
}

func TestWorkflow_AdvanceRequiresSelection(t *testing.T) {
	w := newWorkflow(&memStore{}, nil, settingsWithRelay(), templates())

	err := w.Advance()
	assert.Contains(t, fieldErrors(t, err), "services")
	assert.Equal(t, StepSelectingServices, w.View().Step)
}

func TestWorkflow_ToggleSemantics(t *testing.T) {
	tpls := templates()
	w := newWorkflow(&memStore{}, nil, settingsWithRelay(), tpls)

	require.NoError(t, w.Toggle(tpls[1].ID))
	require.NoError(t, w.Toggle(tpls[0].ID))
	assert.Equal(t, []uuid.UUID{tpls[1].ID, tpls[0].ID}, w.View().Selected)

	require.NoError(t, w.Toggle(tpls[1].ID))
	assert.Equal(t, []uuid.UUID{tpls[0].ID}, w.View().Selected)

	assert.Error(t, w.Toggle(uuid.New()), "unknown templates are rejected")
}

func TestWorkflow_BackNavigation(t *testing.T) {
	tpls := templates()
	w := newWorkflow(&memStore{}, nil, settingsWithRelay(), tpls)
	toContactStep(t, w, tpls[0].ID)

	require.NoError(t, w.Back())
	assert.Equal(t, StepSelectingServices, w.View().Step)
	assert.Equal(t, []uuid.UUID{tpls[0].ID}, w.View().Selected, "selection survives going back")

	assert.ErrorIs(t, w.Back(), ErrWrongStep)
}

func TestWorkflow_ValidationGate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Contact)
		field   string
		onlyOne bool
	}{
		{"bad email", func(c *Contact) { c.Email = "not-an-email" }, "email", true},
		{"empty name", func(c *Contact) { c.Name = "" }, "name", true},
		{"blank name", func(c *Contact) { c.Name = "   " }, "name", true},
		{"short phone", func(c *Contact) { c.Phone = "12345" }, "phone", true},
		{"letters in phone", func(c *Contact) { c.Phone = "09-abc-12345" }, "phone", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			tpls := templates()
			w := newWorkflow(store, nil, settingsWithRelay(), tpls)
			toContactStep(t, w, tpls[0].ID)

			c := validContact()
			tt.mutate(&c)
			require.NoError(t, w.SetContact(c))

			_, err := w.Submit(context.Background(), entity.InquiryMeta{})
			fields := fieldErrors(t, err)
			assert.Contains(t, fields, tt.field)
			if tt.onlyOne {
				assert.Len(t, fields, 1)
			}
			assert.Empty(t, store.inquiries, "invalid input must not be persisted")
			assert.Equal(t, StepEnteringContactInfo, w.View().Step)
			assert.Contains(t, w.View().Errors, tt.field)
		})
	}
}

func TestContact_PhonePatterns(t *testing.T) {
	for _, phone := range []string{"+886912345678", "00886 912 345", "0912-345-678", "12345678"} {
		c := validContact()
		c.Phone = phone
		assert.NotContains(t, c.Validate(), "phone", phone)
	}
}

func TestWorkflow_SubmitPersistsPricedInquiry(t *testing.T) {
	store := &memStore{}
	dispatcher := &recordingDispatcher{enabled: true}
	tpls := templates()
	settings := settingsWithRelay()
	w := newWorkflow(store, dispatcher, settings, tpls)
	toContactStep(t, w, tpls[1].ID, tpls[0].ID)
	require.NoError(t, w.SetContact(validContact()))

	inquiry, err := w.Submit(context.Background(), entity.InquiryMeta{UserAgent: "ua", Platform: "MacIntel"})
	require.NoError(t, err)
	require.Len(t, store.inquiries, 1)

	assert.Equal(t, enum.InquiryStatusNew, inquiry.Status)
	assert.Equal(t, settings.TenantID, inquiry.TenantID)
	assert.Equal(t, "2024-05-20", inquiry.Date)
	assert.Regexp(t, `^Q202405\d{3}$`, inquiry.QuoteNo)
	assert.Equal(t, "Direct", inquiry.Meta.Data().Referrer)
	assert.Equal(t, fixedNow, inquiry.Meta.Data().Timestamp)

	require.Len(t, inquiry.Items, 3)
	assert.Equal(t, "kv", inquiry.Items[0].Description, "items follow selection order")
	assert.Equal(t, entity.Amount(20000), inquiry.Items[0].UnitPrice)
	assert.Equal(t, entity.Amount(5500), inquiry.Items[1].UnitPrice)
	assert.Equal(t, entity.Amount(18500), inquiry.Items[2].UnitPrice, "midpoint is floored")
	for _, it := range inquiry.Items {
		assert.Equal(t, entity.Amount(1), it.Quantity)
	}

	want := pricing.ComputeTotals(inquiry.Items, 0, pricing.DefaultTaxRate)
	assert.Equal(t, pricing.DefaultTaxRate, inquiry.TaxRate)
	assert.Zero(t, inquiry.Discount)
	assert.True(t, want.Total.Equal(inquiry.TotalAmount), "want %s, got %s", want.Total, inquiry.TotalAmount)
	assert.Equal(t, "46200", inquiry.TotalAmount.String())
	assert.True(t, want.Total.Equal(store.inquiries[0].TotalAmount), "the stored row carries the total")
	assert.True(t, want.Subtotal.Equal(w.Totals().Subtotal))

	view := w.View()
	assert.Equal(t, StepSubmitted, view.Step)
	require.NotNil(t, view.Inquiry)

	require.Len(t, dispatcher.sent, 1)
	n := dispatcher.sent[0]
	assert.Equal(t, "Studio", n.ToName)
	assert.Equal(t, "A", n.FromName)
	assert.Equal(t, "a@b.com", n.ReplyTo)
	assert.Equal(t, "Inquiry: 2 services selected.\nNote: call me\n\n[Client Info]\nDevice: MacIntel\nSource: Direct", n.Message)

	_, err = w.Submit(context.Background(), entity.InquiryMeta{})
	assert.ErrorIs(t, err, ErrWrongStep, "no second submission from Submitted")
	assert.Len(t, store.inquiries, 1)
}

func TestWorkflow_NoRelayCredentialsMeansNoNotification(t *testing.T) {
	dispatcher := &recordingDispatcher{enabled: true}
	tpls := templates()
	settings := *entity.DefaultCompanySettings(uuid.New())
	w := newWorkflow(&memStore{}, dispatcher, settings, tpls)
	toContactStep(t, w, tpls[0].ID)
	require.NoError(t, w.SetContact(validContact()))

	_, err := w.Submit(context.Background(), entity.InquiryMeta{})
	require.NoError(t, err)
	assert.Empty(t, dispatcher.sent)
	assert.Equal(t, StepSubmitted, w.View().Step)
}

func TestWorkflow_PersistenceFailureKeepsStep(t *testing.T) {
	store := &memStore{err: errors.New("permission denied")}
	dispatcher := &recordingDispatcher{enabled: true}
	tpls := templates()
	w := newWorkflow(store, dispatcher, settingsWithRelay(), tpls)
	toContactStep(t, w, tpls[0].ID)
	require.NoError(t, w.SetContact(validContact()))

	_, err := w.Submit(context.Background(), entity.InquiryMeta{})
	require.Error(t, err)
	assert.Equal(t, StepEnteringContactInfo, w.View().Step)
	assert.Empty(t, dispatcher.sent)

	store.err = nil
	_, err = w.Submit(context.Background(), entity.InquiryMeta{})
	require.NoError(t, err, "the visitor can retry")
	assert.Len(t, store.inquiries, 1)
}

func TestWorkflow_Restart(t *testing.T) {
	tpls := templates()
	w := newWorkflow(&memStore{}, nil, settingsWithRelay(), tpls)
	toContactStep(t, w, tpls[0].ID)
	require.NoError(t, w.SetContact(validContact()))
	_, err := w.Submit(context.Background(), entity.InquiryMeta{})
	require.NoError(t, err)

	require.NoError(t, w.Restart())
	view := w.View()
	assert.Equal(t, StepSelectingServices, view.Step)
	assert.Empty(t, view.Selected)
	assert.Equal(t, Contact{}, view.Contact)
	assert.Nil(t, view.Inquiry)
	assert.True(t, w.Totals().Total.IsZero())
}

func TestWorkflow_RestartOnlyAfterSubmission(t *testing.T) {
	tpls := templates()
	w := newWorkflow(&memStore{}, nil, settingsWithRelay(), tpls)

	require.NoError(t, w.Toggle(tpls[0].ID))
	assert.ErrorIs(t, w.Restart(), ErrWrongStep)
	assert.Equal(t, []uuid.UUID{tpls[0].ID}, w.View().Selected, "selection survives a rejected restart")

	require.NoError(t, w.Advance())
	require.NoError(t, w.SetContact(validContact()))
	assert.ErrorIs(t, w.Restart(), ErrWrongStep)
	view := w.View()
	assert.Equal(t, StepEnteringContactInfo, view.Step)
	assert.Equal(t, "A", view.Contact.Name)
}

func TestWorkflow_EmptyCatalogFallsBackToDefaults(t *testing.T) {
	w := newWorkflow(&memStore{}, nil, settingsWithRelay(), nil)
	defaults := catalog.Defaults()
	require.Len(t, w.Templates(), len(defaults))
	assert.NoError(t, w.Toggle(defaults[0].ID))
}

func TestWorkflow_PersistsExactlyOneInquiry(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewInquiryRepository(db)
	tpls := templates()
	settings := settingsWithRelay()

	w := newWorkflow(repo, nil, settings, tpls)
	toContactStep(t, w, tpls[0].ID)
	require.NoError(t, w.SetContact(validContact()))
	_, err := w.Submit(context.Background(), entity.InquiryMeta{})
	require.NoError(t, err)

	stored, err := repo.ListAll(context.Background(), settings.TenantID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, enum.InquiryStatusNew, stored[0].Status)
	assert.Len(t, stored[0].Items, 2)
}
