package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	domainRepo "github.com/sangkips/quotecrm/internal/domain/repository"
	"gorm.io/gorm"
)

type inquiryRepository struct {
	db *gorm.DB
}

// NewInquiryRepository creates a new inquiry repository
func NewInquiryRepository(db *gorm.DB) domainRepo.InquiryRepository {
	return &inquiryRepository{db: db}
}

func (r *inquiryRepository) Create(ctx context.Context, inquiry *entity.Inquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

func (r *inquiryRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Inquiry, error) {
	var inquiry entity.Inquiry
	err := r.db.WithContext(ctx).Scopes(ForTenant(tenantID)).First(&inquiry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &inquiry, err
}

func (r *inquiryRepository) Update(ctx context.Context, inquiry *entity.Inquiry) error {
	return r.db.WithContext(ctx).Save(inquiry).Error
}

func (r *inquiryRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(ForTenant(tenantID)).Delete(&entity.Inquiry{}, "id = ?", id).Error
}

func (r *inquiryRepository) List(ctx context.Context, tenantID uuid.UUID, params *domainRepo.InquiryFilterParams) ([]entity.Inquiry, int64, error) {
	inquiries := []entity.Inquiry{}
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Inquiry{}).
		Scopes(ForTenant(tenantID), searchScope(params.Search, "client_name", "client_email", "client_phone"))

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order("timestamp DESC").
		Find(&inquiries).Error

	return inquiries, total, err
}

func (r *inquiryRepository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]entity.Inquiry, error) {
	inquiries := []entity.Inquiry{}
	err := r.db.WithContext(ctx).Scopes(ForTenant(tenantID)).Order("timestamp DESC").Find(&inquiries).Error
	return inquiries, err
}

func (r *inquiryRepository) ListByStatus(ctx context.Context, tenantID uuid.UUID, status enum.InquiryStatus) ([]entity.Inquiry, error) {
	inquiries := []entity.Inquiry{}
	err := r.db.WithContext(ctx).
		Scopes(ForTenant(tenantID)).
		Where("status = ?", status).
		Order("timestamp DESC").
		Find(&inquiries).Error
	return inquiries, err
}
