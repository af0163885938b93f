package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"gorm.io/datatypes"
)

// SettingsService handles the company profile of a tenant
type SettingsService struct {
	settingsRepo repository.SettingsRepository
	notifier     repository.ChangeNotifier
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository, notifier repository.ChangeNotifier) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		notifier:     notifier,
	}
}

// GetSettings retrieves the company settings, creating defaults if none exist
func (s *SettingsService) GetSettings(ctx context.Context, tenantID uuid.UUID) (*entity.CompanySettings, error) {
	settings, err := s.settingsRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if settings == nil {
		settings = entity.DefaultCompanySettings(tenantID)
		if err := s.settingsRepo.Create(ctx, settings); err != nil {
			return nil, err
		}
	}

	return settings, nil
}

// PeekSettings reads the settings for a visitor. Missing settings read as
// the empty default without being created.
func (s *SettingsService) PeekSettings(ctx context.Context, tenantID uuid.UUID) (*entity.CompanySettings, error) {
	settings, err := s.settingsRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = entity.DefaultCompanySettings(tenantID)
	}
	return settings, nil
}

// PublicProfile returns what a visitor may see.
func (s *SettingsService) PublicProfile(ctx context.Context, tenantID uuid.UUID) (entity.PublicProfile, error) {
	settings, err := s.PeekSettings(ctx, tenantID)
	if err != nil {
		return entity.PublicProfile{}, err
	}
	return settings.Public(), nil
}

// UpdateSettingsInput represents the input for updating settings.
// Website is the legacy single-site field still sent by old clients.
type UpdateSettingsInput struct {
	TenantID    uuid.UUID
	Name        string
	Description string
	Address     string
	TaxID       string
	Phone       string
	Email       string
	Logo        string
	Website     string
	Websites    []string
	BankInfo    string
	EmailNotify *entity.EmailNotify
}

// UpdateSettings replaces the profile. A nil EmailNotify keeps the stored
// relay credentials.
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.CompanySettings, error) {
	settings, err := s.GetSettings(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	settings.Name = input.Name
	settings.Description = input.Description
	settings.Address = input.Address
	settings.TaxID = input.TaxID
	settings.Phone = input.Phone
	settings.Email = input.Email
	settings.Logo = input.Logo
	settings.Websites = datatypes.JSONSlice[string](NormalizeWebsites(input.Websites, input.Website))
	settings.BankInfo = input.BankInfo
	if input.EmailNotify != nil {
		settings.EmailNotify = datatypes.NewJSONType(*input.EmailNotify)
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, err
	}
	announce(ctx, s.notifier, enum.CollectionSettings, input.TenantID)

	return settings, nil
}

// NormalizeWebsites trims entries, drops empty ones and keeps order. A
// legacy single site goes first unless the list already has it.
func NormalizeWebsites(websites []string, legacy string) []string {
	out := make([]string, 0, len(websites)+1)
	for _, w := range websites {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}

	legacy = strings.TrimSpace(legacy)
	if legacy == "" {
		return out
	}
	for _, w := range out {
		if w == legacy {
			return out
		}
	}
	return append([]string{legacy}, out...)
}
