package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
)

// SettingsRepository defines persistence for the company settings singleton
type SettingsRepository interface {
	GetByTenant(ctx context.Context, tenantID uuid.UUID) (*entity.CompanySettings, error)
	Create(ctx context.Context, settings *entity.CompanySettings) error
	Update(ctx context.Context, settings *entity.CompanySettings) error
}
