package repository

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	domainRepo "github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/pkg/pagination"
	"gorm.io/gorm"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) domainRepo.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).Scopes(ForTenant(tenantID)).First(&client, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) Update(ctx context.Context, client *entity.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(ForTenant(tenantID)).Delete(&entity.Client{}, "id = ?", id).Error
}

func (r *clientRepository) List(ctx context.Context, tenantID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error) {
	clients := []entity.Client{}
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Client{}).
		Scopes(ForTenant(tenantID), searchScope(search, "name", "email", "phone"))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&clients).Error

	return clients, total, err
}

// ListWithCursor returns clients using keyset pagination on (created_at, id).
// It fetches limit+1 rows so the caller can detect another page.
func (r *clientRepository) ListWithCursor(ctx context.Context, tenantID uuid.UUID, params *pagination.CursorParams, search string) ([]entity.Client, error) {
	clients := []entity.Client{}

	params.Validate()
	query := r.db.WithContext(ctx).Model(&entity.Client{}).
		Scopes(ForTenant(tenantID), searchScope(search, "name", "email", "phone"))

	cursor, err := params.DecodeCursor()
	if err != nil {
		return nil, err
	}

	backward := params.Backward()
	order := "created_at ASC, id ASC"
	if cursor != nil {
		if backward {
			query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
			order = "created_at DESC, id DESC"
		} else {
			query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
		}
	}

	if err := query.Limit(params.Limit + 1).Order(order).Find(&clients).Error; err != nil {
		return nil, err
	}

	if backward {
		slices.Reverse(clients)
	}
	return clients, nil
}
