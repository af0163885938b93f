package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	domainRepo "github.com/sangkips/quotecrm/internal/domain/repository"
	"gorm.io/gorm"
)

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new service template repository
func NewTemplateRepository(db *gorm.DB) domainRepo.TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) List(ctx context.Context, tenantID uuid.UUID) ([]entity.ServiceTemplate, error) {
	templates := []entity.ServiceTemplate{}
	err := r.db.WithContext(ctx).
		Scopes(ForTenant(tenantID)).
		Order("position ASC, created_at ASC").
		Find(&templates).Error
	return templates, err
}

func (r *templateRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*entity.ServiceTemplate, error) {
	var template entity.ServiceTemplate
	err := r.db.WithContext(ctx).Scopes(ForTenant(tenantID)).First(&template, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &template, err
}

func (r *templateRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ServiceTemplate{}).Scopes(ForTenant(tenantID)).Count(&count).Error
	return count, err
}

// Create appends the template to the end of the tenant's catalog
func (r *templateRepository) Create(ctx context.Context, template *entity.ServiceTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		err := tx.Model(&entity.ServiceTemplate{}).
			Scopes(ForTenant(template.TenantID)).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error
		if err != nil {
			return err
		}
		template.Position = next
		return tx.Create(template).Error
	})
}

func (r *templateRepository) Update(ctx context.Context, template *entity.ServiceTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

func (r *templateRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Scopes(ForTenant(tenantID)).Delete(&entity.ServiceTemplate{}, "id = ?", id).Error
}

func (r *templateRepository) ReplaceAll(ctx context.Context, tenantID uuid.UUID, templates []entity.ServiceTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTenantCatalog(tx, tenantID); err != nil {
			return err
		}
		if err := tx.Scopes(ForTenant(tenantID)).Delete(&entity.ServiceTemplate{}).Error; err != nil {
			return err
		}
		return insertTemplates(tx, tenantID, templates)
	})
}

func (r *templateRepository) SeedIfEmpty(ctx context.Context, tenantID uuid.UUID, templates []entity.ServiceTemplate) (bool, error) {
	seeded := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTenantCatalog(tx, tenantID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&entity.ServiceTemplate{}).Scopes(ForTenant(tenantID)).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		if err := insertTemplates(tx, tenantID, templates); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}

// lockTenantCatalog serializes catalog rewrites of one tenant across
// connections. SQLite already serializes writers, so only PostgreSQL needs it.
func lockTenantCatalog(tx *gorm.DB, tenantID uuid.UUID) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "templates:"+tenantID.String()).Error
}

func insertTemplates(tx *gorm.DB, tenantID uuid.UUID, templates []entity.ServiceTemplate) error {
	if len(templates) == 0 {
		return nil
	}
	rows := make([]entity.ServiceTemplate, len(templates))
	for i, t := range templates {
		t.ID = uuid.Nil
		t.TenantID = tenantID
		t.Position = i
		rows[i] = t
	}
	return tx.Create(&rows).Error
}
