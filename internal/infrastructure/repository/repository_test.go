package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/infrastructure/database/dbtest"
	"github.com/sangkips/quotecrm/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForTenant_NilMatchesNothing(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewClientRepository(db)
	require.NoError(t, repo.Create(ctx, &entity.Client{TenantID: uuid.New(), Name: "a"}))

	var count int64
	require.NoError(t, db.Model(&entity.Client{}).Scopes(ForTenant(uuid.Nil)).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIdempotencyRepository(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewIdempotencyRepository(db)
	tenantID := uuid.New()
	now := time.Now()

	first := &entity.IdempotencyKey{
		TenantID: tenantID, Key: "k", Fingerprint: "f1", Route: "POST /x",
		StatusCode: 201, Body: []byte(`{"n":1}`), ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, repo.Save(ctx, first))

	second := *first
	second.ID = uuid.Nil
	second.Fingerprint = "f2"
	require.NoError(t, repo.Save(ctx, &second), "a conflicting save is ignored")

	got, err := repo.Find(ctx, tenantID, "k", now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Matches("f1"))
	assert.Equal(t, []byte(`{"n":1}`), got.Body)

	other, err := repo.Find(ctx, uuid.New(), "k", now)
	require.NoError(t, err)
	assert.Nil(t, other, "keys are private to a tenant")

	expired, err := repo.Find(ctx, tenantID, "k", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, expired)

	n, err := repo.Purge(ctx, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestIdempotencyRepository_ReplacesExpiredKey(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewIdempotencyRepository(db)
	tenantID := uuid.New()

	require.NoError(t, repo.Save(ctx, &entity.IdempotencyKey{
		TenantID: tenantID, Key: "k", Fingerprint: "old", Route: "POST /x",
		StatusCode: 201, ExpiresAt: time.Now().Add(-time.Minute),
	}))
	require.NoError(t, repo.Save(ctx, &entity.IdempotencyKey{
		TenantID: tenantID, Key: "k", Fingerprint: "new", Route: "POST /x",
		StatusCode: 201, ExpiresAt: time.Now().Add(time.Hour),
	}))

	got, err := repo.Find(ctx, tenantID, "k", time.Now())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Matches("new"))
}

func TestClientRepository_CursorWalk(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	repo := NewClientRepository(db)
	tenantID := uuid.New()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		c := &entity.Client{TenantID: tenantID, Name: name}
		require.NoError(t, repo.Create(ctx, c))
		require.NoError(t, db.Model(c).UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}
	position := func(c entity.Client) pagination.Cursor {
		return pagination.Cursor{ID: c.ID.String(), CreatedAt: c.CreatedAt}
	}
	names := func(cs []entity.Client) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name
		}
		return out
	}

	params := &pagination.CursorParams{Limit: 2}
	rows, err := repo.ListWithCursor(ctx, tenantID, params, "")
	require.NoError(t, err)
	page, items := pagination.NewCursorPagination(rows, params, position)
	assert.Equal(t, []string{"a", "b"}, names(items))
	require.True(t, page.HasNext)

	params = &pagination.CursorParams{Cursor: *page.NextCursor, Limit: 2}
	rows, err = repo.ListWithCursor(ctx, tenantID, params, "")
	require.NoError(t, err)
	page, items = pagination.NewCursorPagination(rows, params, position)
	assert.Equal(t, []string{"c", "d"}, names(items))

	params = &pagination.CursorParams{Cursor: *page.PrevCursor, Direction: pagination.CursorDirectionPrev, Limit: 2}
	rows, err = repo.ListWithCursor(ctx, tenantID, params, "")
	require.NoError(t, err)
	page, items = pagination.NewCursorPagination(rows, params, position)
	assert.Equal(t, []string{"a", "b"}, names(items))
	assert.False(t, page.HasPrev)
	assert.True(t, page.HasNext)
}
