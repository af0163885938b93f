package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EmailNotify holds the credentials of the external email relay. All three
// must be present for notifications to be sent.
type EmailNotify struct {
	ServiceID  string `json:"service_id"`
	TemplateID string `json:"template_id"`
	PublicKey  string `json:"public_key"`
}

// Configured reports whether every relay credential is set.
func (e EmailNotify) Configured() bool {
	return e.ServiceID != "" && e.TemplateID != "" && e.PublicKey != ""
}

// CompanySettings is the per-tenant branding and profile singleton.
type CompanySettings struct {
	ID          uuid.UUID                       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID                       `gorm:"type:uuid;not null;uniqueIndex" json:"tenant_id"`
	Name        string                          `gorm:"size:255" json:"name"`
	Description string                          `gorm:"type:text" json:"description"`
	Address     string                          `gorm:"size:500" json:"address"`
	TaxID       string                          `gorm:"size:50" json:"tax_id"`
	Phone       string                          `gorm:"size:50" json:"phone"`
	Email       string                          `gorm:"size:255" json:"email"`
	Logo        string                          `gorm:"type:text" json:"logo"`
	Websites    datatypes.JSONSlice[string]     `json:"websites"`
	BankInfo    string                          `gorm:"type:text" json:"bank_info"`
	EmailNotify datatypes.JSONType[EmailNotify] `json:"email_notify"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

// DefaultCompanySettings returns the empty profile created on first read.
func DefaultCompanySettings(tenantID uuid.UUID) *CompanySettings {
	return &CompanySettings{
		TenantID:    tenantID,
		Websites:    datatypes.JSONSlice[string]{},
		EmailNotify: datatypes.NewJSONType(EmailNotify{}),
	}
}

// BeforeCreate generates a UUID before creating settings
func (s *CompanySettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Websites == nil {
		s.Websites = datatypes.JSONSlice[string]{}
	}
	return nil
}

func (CompanySettings) TableName() string {
	return "company_settings"
}

// PublicProfile is the part of the settings visible to unauthenticated visitors.
type PublicProfile struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Phone       string   `json:"phone"`
	Email       string   `json:"email"`
	Logo        string   `json:"logo"`
	Websites    []string `json:"websites"`
}

// Public strips relay credentials and internal fields.
func (s *CompanySettings) Public() PublicProfile {
	websites := []string(s.Websites)
	if websites == nil {
		websites = []string{}
	}
	return PublicProfile{
		Name:        s.Name,
		Description: s.Description,
		Address:     s.Address,
		Phone:       s.Phone,
		Email:       s.Email,
		Logo:        s.Logo,
		Websites:    websites,
	}
}
