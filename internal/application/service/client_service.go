package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/editor"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/sangkips/quotecrm/pkg/pagination"
)

// ClientService handles the address book
type ClientService struct {
	clientRepo repository.ClientRepository
	editor     *editor.Editor
	notifier   repository.ChangeNotifier
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository, ed *editor.Editor, notifier repository.ChangeNotifier) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		editor:     ed,
		notifier:   notifier,
	}
}

// ClientInput represents a client form
type ClientInput struct {
	TenantID uuid.UUID
	Name     string
	Phone    string
	Email    string
}

func (in *ClientInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.NewFieldValidationError(map[string]string{"name": "name is required"})
	}
	return nil
}

func (s *ClientService) ListClients(ctx context.Context, tenantID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Client, *pagination.Pagination, error) {
	if params == nil {
		params = pagination.DefaultPagination()
	}
	clients, total, err := s.clientRepo.List(ctx, tenantID, params, search)
	if err != nil {
		return nil, nil, err
	}
	return clients, pagination.NewPagination(params.Page, params.PerPage, total), nil
}

// ListClientsWithCursor pages the address book in creation order.
func (s *ClientService) ListClientsWithCursor(ctx context.Context, tenantID uuid.UUID, params *pagination.CursorParams, search string) ([]entity.Client, *pagination.CursorPagination, error) {
	if params == nil {
		params = pagination.DefaultCursorParams()
	}
	if _, err := params.DecodeCursor(); err != nil {
		return nil, nil, apperror.NewBadRequestError("invalid cursor")
	}
	clients, err := s.clientRepo.ListWithCursor(ctx, tenantID, params, search)
	if err != nil {
		return nil, nil, err
	}
	page, items := pagination.NewCursorPagination(clients, params, func(c entity.Client) pagination.Cursor {
		return pagination.Cursor{ID: c.ID.String(), CreatedAt: c.CreatedAt}
	})
	return items, page, nil
}

func (s *ClientService) GetClient(ctx context.Context, tenantID, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

func (s *ClientService) CreateClient(ctx context.Context, input *ClientInput) (*entity.Client, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	client := &entity.Client{
		TenantID: input.TenantID,
		Name:     strings.TrimSpace(input.Name),
		Phone:    strings.TrimSpace(input.Phone),
		Email:    strings.TrimSpace(input.Email),
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	announce(ctx, s.notifier, enum.CollectionClients, input.TenantID)
	return client, nil
}

// SaveFromDraft stores the contact currently typed in the quote editor.
func (s *ClientService) SaveFromDraft(ctx context.Context, tenantID uuid.UUID) (*entity.Client, error) {
	view, err := s.editor.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.CreateClient(ctx, &ClientInput{
		TenantID: tenantID,
		Name:     view.Draft.ClientName,
		Phone:    view.Draft.ClientPhone,
		Email:    view.Draft.ClientEmail,
	})
}

func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, input *ClientInput) (*entity.Client, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	client, err := s.GetClient(ctx, input.TenantID, id)
	if err != nil {
		return nil, err
	}
	client.Name = strings.TrimSpace(input.Name)
	client.Phone = strings.TrimSpace(input.Phone)
	client.Email = strings.TrimSpace(input.Email)

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	announce(ctx, s.notifier, enum.CollectionClients, input.TenantID)
	return client, nil
}

func (s *ClientService) DeleteClient(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.GetClient(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	announce(ctx, s.notifier, enum.CollectionClients, tenantID)
	return nil
}

// ApplyToDraft copies the client's contact into the quote draft.
func (s *ClientService) ApplyToDraft(ctx context.Context, tenantID, id uuid.UUID) (editor.View, error) {
	client, err := s.GetClient(ctx, tenantID, id)
	if err != nil {
		return editor.View{}, err
	}
	return s.editor.Update(ctx, tenantID, editor.ApplyClient(*client))
}
