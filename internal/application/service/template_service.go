package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/catalog"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/internal/infrastructure/metrics"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"gorm.io/datatypes"
)

// TemplateService manages the service catalog of a tenant
type TemplateService struct {
	templateRepo repository.TemplateRepository
	notifier     repository.ChangeNotifier
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(
	templateRepo repository.TemplateRepository,
	notifier repository.ChangeNotifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) *TemplateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateService{
		templateRepo: templateRepo,
		notifier:     notifier,
		metrics:      m,
		logger:       logger,
	}
}

// TemplateInput represents the template form
type TemplateInput struct {
	TenantID    uuid.UUID
	Name        string
	Description string
	Items       []entity.TemplateItem
}

func (in *TemplateInput) validate() error {
	if errs := catalog.Validate(in.Name, in.Items); len(errs) > 0 {
		return apperror.NewFieldValidationError(errs)
	}
	return nil
}

// ListTemplates returns the stored catalog in display order
func (s *TemplateService) ListTemplates(ctx context.Context, tenantID uuid.UUID) ([]entity.ServiceTemplate, error) {
	return s.templateRepo.List(ctx, tenantID)
}

// PublishedTemplates is what visitors choose from: the stored catalog, or
// the built-in one while the tenant has none.
func (s *TemplateService) PublishedTemplates(ctx context.Context, tenantID uuid.UUID) ([]entity.ServiceTemplate, error) {
	stored, err := s.templateRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return catalog.Resolve(stored), nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, tenantID, id uuid.UUID) (*entity.ServiceTemplate, error) {
	t, err := s.templateRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperror.NewNotFoundError("Template")
	}
	return t, nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, input *TemplateInput) (*entity.ServiceTemplate, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	t := &entity.ServiceTemplate{
		TenantID:    input.TenantID,
		Name:        input.Name,
		Description: input.Description,
		Items:       datatypes.JSONSlice[entity.TemplateItem](input.Items),
	}
	if err := s.templateRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	announce(ctx, s.notifier, enum.CollectionTemplates, input.TenantID)
	return t, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, id uuid.UUID, input *TemplateInput) (*entity.ServiceTemplate, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	t, err := s.GetTemplate(ctx, input.TenantID, id)
	if err != nil {
		return nil, err
	}
	t.Name = input.Name
	t.Description = input.Description
	t.Items = datatypes.JSONSlice[entity.TemplateItem](input.Items)

	if err := s.templateRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	announce(ctx, s.notifier, enum.CollectionTemplates, input.TenantID)
	return t, nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.GetTemplate(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	announce(ctx, s.notifier, enum.CollectionTemplates, tenantID)
	return nil
}

// ResetToDefaults replaces the whole catalog with the built-in one in a
// single transaction. A failure leaves the previous catalog intact.
func (s *TemplateService) ResetToDefaults(ctx context.Context, tenantID uuid.UUID) ([]entity.ServiceTemplate, error) {
	if err := s.templateRepo.ReplaceAll(ctx, tenantID, catalog.ForTenant(tenantID)); err != nil {
		s.logger.Error("resetting catalog failed", "tenant_id", tenantID, "error", err)
		return nil, err
	}
	s.logger.Info("catalog reset to defaults", "tenant_id", tenantID)
	announce(ctx, s.notifier, enum.CollectionTemplates, tenantID)
	return s.templateRepo.List(ctx, tenantID)
}

// SeedDefaults inserts the built-in catalog when the tenant has none.
func (s *TemplateService) SeedDefaults(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	seeded, err := s.templateRepo.SeedIfEmpty(ctx, tenantID, catalog.ForTenant(tenantID))
	if err != nil {
		return false, err
	}
	if seeded {
		s.metrics.TemplatesSeeded()
		announce(ctx, s.notifier, enum.CollectionTemplates, tenantID)
	}
	return seeded, nil
}
