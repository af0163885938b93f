package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/pkg/pagination"
)

// ClientRepository defines the interface for address book operations
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error)
	ListWithCursor(ctx context.Context, tenantID uuid.UUID, params *pagination.CursorParams, search string) ([]entity.Client, error)
}
