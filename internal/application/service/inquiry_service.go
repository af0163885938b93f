package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/editor"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/sangkips/quotecrm/pkg/pagination"
)

// InquiryService handles the operator side of inquiries
type InquiryService struct {
	inquiryRepo repository.InquiryRepository
	bus         *editor.Bus
	notifier    repository.ChangeNotifier
}

// NewInquiryService creates a new inquiry service
func NewInquiryService(inquiryRepo repository.InquiryRepository, bus *editor.Bus, notifier repository.ChangeNotifier) *InquiryService {
	return &InquiryService{
		inquiryRepo: inquiryRepo,
		bus:         bus,
		notifier:    notifier,
	}
}

// ListInquiries returns inquiries newest first
func (s *InquiryService) ListInquiries(ctx context.Context, tenantID uuid.UUID, params *repository.InquiryFilterParams) ([]entity.Inquiry, *pagination.Pagination, error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	inquiries, total, err := s.inquiryRepo.List(ctx, tenantID, params)
	if err != nil {
		return nil, nil, err
	}
	return inquiries, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total), nil
}

func (s *InquiryService) GetInquiry(ctx context.Context, tenantID, id uuid.UUID) (*entity.Inquiry, error) {
	inquiry, err := s.inquiryRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if inquiry == nil {
		return nil, apperror.NewNotFoundError("Inquiry")
	}
	return inquiry, nil
}

// UpdateStatus moves an inquiry to another column. Any transition is allowed.
func (s *InquiryService) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status enum.InquiryStatus) (*entity.Inquiry, error) {
	if !status.Valid() {
		return nil, apperror.NewFieldValidationError(map[string]string{"status": "unknown status"})
	}
	return s.modify(ctx, tenantID, id, func(inq *entity.Inquiry) { inq.Status = status })
}

// Rate sets the 0-5 star score.
func (s *InquiryService) Rate(ctx context.Context, tenantID, id uuid.UUID, score int) (*entity.Inquiry, error) {
	if score < entity.MinInquiryScore || score > entity.MaxInquiryScore {
		return nil, apperror.NewFieldValidationError(map[string]string{
			"score": fmt.Sprintf("score must be between %d and %d", entity.MinInquiryScore, entity.MaxInquiryScore),
		})
	}
	return s.modify(ctx, tenantID, id, func(inq *entity.Inquiry) { inq.Score = score })
}

// UpdateInquiryInput holds the editable contact fields
type UpdateInquiryInput struct {
	TenantID    uuid.UUID
	ID          uuid.UUID
	ClientName  string
	ClientPhone string
	ClientEmail string
	Note        string
}

func (s *InquiryService) UpdateInquiry(ctx context.Context, input *UpdateInquiryInput) (*entity.Inquiry, error) {
	return s.modify(ctx, input.TenantID, input.ID, func(inq *entity.Inquiry) {
		inq.ClientName = input.ClientName
		inq.ClientPhone = input.ClientPhone
		inq.ClientEmail = input.ClientEmail
		inq.Note = input.Note
	})
}

func (s *InquiryService) DeleteInquiry(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.GetInquiry(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.inquiryRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	announce(ctx, s.notifier, enum.CollectionInquiries, tenantID)
	return nil
}

// LoadIntoEditor hands the inquiry's contact, items and note to the quote editor.
func (s *InquiryService) LoadIntoEditor(ctx context.Context, tenantID, id uuid.UUID) error {
	inquiry, err := s.GetInquiry(ctx, tenantID, id)
	if err != nil {
		return err
	}
	return s.bus.Publish(ctx, editor.LoadQuoteFromInquiry(inquiry))
}

func (s *InquiryService) modify(ctx context.Context, tenantID, id uuid.UUID, fn func(*entity.Inquiry)) (*entity.Inquiry, error) {
	inquiry, err := s.GetInquiry(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	fn(inquiry)
	if err := s.inquiryRepo.Update(ctx, inquiry); err != nil {
		return nil, err
	}
	announce(ctx, s.notifier, enum.CollectionInquiries, tenantID)
	return inquiry, nil
}
