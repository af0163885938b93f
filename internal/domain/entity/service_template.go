package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TemplateItem is one priced row of a service template.
type TemplateItem struct {
	Description string `json:"description" yaml:"description"`
	Unit        string `json:"unit" yaml:"unit"`
	PriceMin    Amount `json:"price_min" yaml:"price_min"`
	PriceMax    Amount `json:"price_max" yaml:"price_max"`
}

// MidpointPrice is the floored midpoint of the price range.
func (i TemplateItem) MidpointPrice() float64 {
	return math.Floor((i.PriceMin.Float() + i.PriceMax.Float()) / 2)
}

// ServiceTemplate is a reusable bundle of line items offered as one service.
type ServiceTemplate struct {
	ID          uuid.UUID                         `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID                         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name        string                            `gorm:"size:255;not null" json:"name"`
	Description string                            `gorm:"type:text" json:"description"`
	Items       datatypes.JSONSlice[TemplateItem] `json:"items"`
	Position    int                               `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time                         `json:"created_at"`
	UpdatedAt   time.Time                         `json:"updated_at"`
}

// BeforeCreate assigns the canonical identifier every template carries,
// whether it came from the default catalog or from the tenant.
func (t *ServiceTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Items == nil {
		t.Items = datatypes.JSONSlice[TemplateItem]{}
	}
	return nil
}

func (ServiceTemplate) TableName() string {
	return "service_templates"
}
