package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	domainRepo "github.com/sangkips/quotecrm/internal/domain/repository"
	"gorm.io/gorm"
)

type quoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *gorm.DB) domainRepo.QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *entity.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *quoteRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Quote, error) {
	var quote entity.Quote
	err := r.db.WithContext(ctx).Scopes(ForTenant(tenantID)).First(&quote, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &quote, err
}

func (r *quoteRepository) Update(ctx context.Context, quote *entity.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

func (r *quoteRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(ForTenant(tenantID)).Delete(&entity.Quote{}, "id = ?", id).Error
}

func (r *quoteRepository) List(ctx context.Context, tenantID uuid.UUID, params *domainRepo.QuoteFilterParams) ([]entity.Quote, int64, error) {
	quotes := []entity.Quote{}
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Quote{}).
		Scopes(ForTenant(tenantID), searchScope(params.Search, "client_name", "quote_no"))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("timestamp DESC").
		Find(&quotes).Error

	return quotes, total, err
}

func (r *quoteRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]entity.Quote, error) {
	quotes := []entity.Quote{}
	err := r.db.WithContext(ctx).Scopes(ForTenant(tenantID)).Order("timestamp DESC").Find(&quotes).Error
	return quotes, err
}
