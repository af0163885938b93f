package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InquiryMeta is best-effort client environment data captured at submission.
// It is kept for analytics only.
type InquiryMeta struct {
	UserAgent string    `json:"user_agent"`
	Screen    string    `json:"screen"`
	Language  string    `json:"language"`
	Platform  string    `json:"platform"`
	Referrer  string    `json:"referrer"`
	Timezone  string    `json:"timezone"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	MinInquiryScore = 0
	MaxInquiryScore = 5
)

// Inquiry is a service request submitted through the public form. It is
// priced like a quote at submission time, without a discount.
type Inquiry struct {
	ID          uuid.UUID                       `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID                       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientName  string                          `gorm:"size:255" json:"client_name"`
	ClientPhone string                          `gorm:"size:50" json:"client_phone"`
	ClientEmail string                          `gorm:"size:255" json:"client_email"`
	Note        string                          `gorm:"type:text" json:"note"`
	QuoteNo     string                          `gorm:"size:32" json:"quote_no"`
	Date        string                          `gorm:"size:10" json:"date"`
	Items       datatypes.JSONSlice[LineItem]   `json:"items"`
	TaxRate     float64                         `gorm:"not null;default:0.05" json:"tax_rate"`
	Discount    float64                         `gorm:"not null;default:0" json:"discount"`
	TotalAmount decimal.Decimal                 `gorm:"type:decimal(15,2);not null;default:0" json:"total_amount"`
	Status      enum.InquiryStatus              `gorm:"not null;default:0;index" json:"status"`
	Score       int                             `gorm:"not null;default:0" json:"score"`
	Meta        datatypes.JSONType[InquiryMeta] `json:"meta"`
	Timestamp   time.Time                       `gorm:"index" json:"timestamp"`
	CreatedAt   time.Time                       `json:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new inquiry
func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Items == nil {
		i.Items = datatypes.JSONSlice[LineItem]{}
	}
	return nil
}

func (Inquiry) TableName() string {
	return "inquiries"
}
