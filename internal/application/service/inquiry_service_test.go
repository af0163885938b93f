package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/editor"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	domainRepo "github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/internal/infrastructure/repository"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedInquiry(t *testing.T, repo domainRepo.InquiryRepository, tenantID uuid.UUID, name string, at time.Time, items ...entity.LineItem) *entity.Inquiry {
	t.Helper()
	inq := &entity.Inquiry{
		TenantID:    tenantID,
		ClientName:  name,
		ClientEmail: name + "@example.com",
		Date:        at.Format(time.DateOnly),
		Items:       items,
		Timestamp:   at,
	}
	require.NoError(t, repo.Create(context.Background(), inq))
	return inq
}

func TestInquiryService_StatusScoreAndEdit(t *testing.T) {
	db, tenantID := newTestDB(t)
	repo := repository.NewInquiryRepository(db)
	n := &recordingNotifier{}
	svc := NewInquiryService(repo, editor.NewBus(), n)
	ctx := context.Background()

	inq := seedInquiry(t, repo, tenantID, "lin", time.Now())

	got, err := svc.UpdateStatus(ctx, tenantID, inq.ID, enum.InquiryStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, enum.InquiryStatusClosed, got.Status)

	got, err = svc.UpdateStatus(ctx, tenantID, inq.ID, enum.InquiryStatusNew)
	require.NoError(t, err, "any transition is allowed")
	assert.Equal(t, enum.InquiryStatusNew, got.Status)

	_, err = svc.UpdateStatus(ctx, tenantID, inq.ID, enum.InquiryStatus(9))
	assert.Error(t, err)

	for _, score := range []int{0, 5} {
		got, err = svc.Rate(ctx, tenantID, inq.ID, score)
		require.NoError(t, err)
		assert.Equal(t, score, got.Score)
	}
	for _, score := range []int{-1, 6} {
		_, err = svc.Rate(ctx, tenantID, inq.ID, score)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields(), "score")
	}

	got, err = svc.UpdateInquiry(ctx, &UpdateInquiryInput{
		TenantID: tenantID, ID: inq.ID,
		ClientName: "Lin", ClientPhone: "0912", ClientEmail: "lin@corp.example", Note: "vip",
	})
	require.NoError(t, err)
	stored, err := svc.GetInquiry(ctx, tenantID, inq.ID)
	require.NoError(t, err)
	assert.Equal(t, "lin@corp.example", stored.ClientEmail)
	assert.Equal(t, "vip", stored.Note)
	assert.Equal(t, 5, stored.Score)

	assert.Equal(t, 5, n.count(enum.CollectionInquiries))
}

func TestInquiryService_TenantIsolationAndDelete(t *testing.T) {
	db, tenantID := newTestDB(t)
	repo := repository.NewInquiryRepository(db)
	svc := NewInquiryService(repo, editor.NewBus(), nil)
	ctx := context.Background()

	inq := seedInquiry(t, repo, tenantID, "a", time.Now())

	_, err := svc.GetInquiry(ctx, uuid.New(), inq.ID)
	assert.Error(t, err, "another tenant cannot read it")

	require.NoError(t, svc.DeleteInquiry(ctx, tenantID, inq.ID))
	_, err = svc.GetInquiry(ctx, tenantID, inq.ID)
	assert.Error(t, err)
}

func TestInquiryService_ListNewestFirstWithStatusFilter(t *testing.T) {
	db, tenantID := newTestDB(t)
	repo := repository.NewInquiryRepository(db)
	svc := NewInquiryService(repo, editor.NewBus(), nil)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	seedInquiry(t, repo, tenantID, "old", base)
	newer := seedInquiry(t, repo, tenantID, "new", base.Add(time.Hour))
	_, err := svc.UpdateStatus(ctx, tenantID, newer.ID, enum.InquiryStatusContacted)
	require.NoError(t, err)

	list, page, err := svc.ListInquiries(ctx, tenantID, &domainRepo.InquiryFilterParams{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ClientName)
	assert.EqualValues(t, 2, page.Total)

	contacted := enum.InquiryStatusContacted
	list, _, err = svc.ListInquiries(ctx, tenantID, &domainRepo.InquiryFilterParams{Status: &contacted})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].ClientName)
}

func TestInquiryService_LoadIntoEditor(t *testing.T) {
	db, tenantID := newTestDB(t)
	repo := repository.NewInquiryRepository(db)
	bus := editor.NewBus()
	ed := editor.New(nil, repository.NewQuoteRepository(db), bus)
	svc := NewInquiryService(repo, bus, nil)

	inq := seedInquiry(t, repo, tenantID, "lin", time.Now(),
		entity.LineItem{ID: "1", Description: "kv", Quantity: 1, UnitPrice: 20000})

	require.NoError(t, svc.LoadIntoEditor(context.Background(), tenantID, inq.ID))

	view, err := ed.Get(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, "lin", view.Draft.ClientName)
	require.Len(t, view.Draft.Items, 1)
	assert.Equal(t, "20000", view.Totals.Subtotal.String())
}
