package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
)

// TemplateRepository defines the interface for service template data operations
type TemplateRepository interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]entity.ServiceTemplate, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.ServiceTemplate, error)
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Create(ctx context.Context, template *entity.ServiceTemplate) error
	Update(ctx context.Context, template *entity.ServiceTemplate) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// ReplaceAll deletes every template of the tenant and inserts the given
	// set in one transaction. On error nothing changes.
	ReplaceAll(ctx context.Context, tenantID uuid.UUID, templates []entity.ServiceTemplate) error
	// SeedIfEmpty inserts templates only when the tenant has none, checked
	// inside the same transaction. It reports whether anything was inserted.
	SeedIfEmpty(ctx context.Context, tenantID uuid.UUID, templates []entity.ServiceTemplate) (bool, error)
}
