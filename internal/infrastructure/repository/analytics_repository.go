package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	domainRepo "github.com/sangkips/quotecrm/internal/domain/repository"
	"gorm.io/gorm"
)

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) domainRepo.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CountInquiries(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Inquiry{}).Scopes(ForTenant(tenantID)).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) CountQuotes(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Quote{}).Scopes(ForTenant(tenantID)).Count(&count).Error
	return count, err
}

func (r *analyticsRepository) InquiryStatusBreakdown(ctx context.Context, tenantID uuid.UUID) ([]domainRepo.StatusCount, error) {
	rows := []domainRepo.StatusCount{}
	err := r.db.WithContext(ctx).Model(&entity.Inquiry{}).
		Scopes(ForTenant(tenantID)).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	return rows, err
}

// QuoteTotalsByMonth sums saved quote totals per quote month, newest first.
// quote_date is stored as YYYY-MM-DD so the first seven characters are the month.
func (r *analyticsRepository) QuoteTotalsByMonth(ctx context.Context, tenantID uuid.UUID, months int) ([]domainRepo.MonthlyQuoteTotal, error) {
	if months <= 0 {
		months = 12
	}

	rows := []domainRepo.MonthlyQuoteTotal{}
	err := r.db.WithContext(ctx).Model(&entity.Quote{}).
		Scopes(ForTenant(tenantID)).
		Select("SUBSTR(quote_date, 1, 7) AS month, COUNT(*) AS quote_count, COALESCE(SUM(total_amount), 0) AS total").
		Where("quote_date <> ''").
		Group("SUBSTR(quote_date, 1, 7)").
		Order("month DESC").
		Limit(months).
		Scan(&rows).Error
	return rows, err
}
