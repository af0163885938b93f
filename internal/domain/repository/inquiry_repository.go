package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/pkg/pagination"
)

// InquiryRepository defines the interface for inquiry data operations
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *entity.Inquiry) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.Inquiry, error)
	Update(ctx context.Context, inquiry *entity.Inquiry) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, params *InquiryFilterParams) ([]entity.Inquiry, int64, error)
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]entity.Inquiry, error)
	ListByStatus(ctx context.Context, tenantID uuid.UUID, status enum.InquiryStatus) ([]entity.Inquiry, error)
}

// InquiryFilterParams contains filtering parameters for inquiry queries
type InquiryFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.InquiryStatus
}
