package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/editor"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/sangkips/quotecrm/pkg/pagination"
)

// QuoteService handles saved quote history
type QuoteService struct {
	quoteRepo repository.QuoteRepository
	bus       *editor.Bus
	notifier  repository.ChangeNotifier
}

// NewQuoteService creates a new quote service
func NewQuoteService(quoteRepo repository.QuoteRepository, bus *editor.Bus, notifier repository.ChangeNotifier) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
		bus:       bus,
		notifier:  notifier,
	}
}

// ListQuotes returns saved quotes newest first
func (s *QuoteService) ListQuotes(ctx context.Context, tenantID uuid.UUID, params *repository.QuoteFilterParams) ([]entity.Quote, *pagination.Pagination, error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	quotes, total, err := s.quoteRepo.List(ctx, tenantID, params)
	if err != nil {
		return nil, nil, err
	}
	return quotes, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total), nil
}

func (s *QuoteService) GetQuote(ctx context.Context, tenantID, id uuid.UUID) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.NewNotFoundError("Quote")
	}
	return quote, nil
}

func (s *QuoteService) DeleteQuote(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.GetQuote(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.quoteRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	announce(ctx, s.notifier, enum.CollectionQuotes, tenantID)
	return nil
}

// LoadIntoEditor copies the quote's contact, items and note into the draft.
func (s *QuoteService) LoadIntoEditor(ctx context.Context, tenantID, id uuid.UUID) error {
	quote, err := s.GetQuote(ctx, tenantID, id)
	if err != nil {
		return err
	}
	return s.bus.Publish(ctx, editor.LoadQuoteFromQuote(quote))
}
