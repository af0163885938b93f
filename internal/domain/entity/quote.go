package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultQuoteTitle = "QUOTATION"
	DefaultTaxRate    = 0.05
)

// Quote is an operator-authored priced proposal. TotalAmount is the total
// computed at save time and is never recomputed from stored items.
type Quote struct {
	ID          uuid.UUID                     `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID                     `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientName  string                        `gorm:"size:255" json:"client_name"`
	ClientPhone string                        `gorm:"size:50" json:"client_phone"`
	ClientEmail string                        `gorm:"size:255" json:"client_email"`
	QuoteNo     string                        `gorm:"size:32;index" json:"quote_no"`
	QuoteDate   string                        `gorm:"size:10" json:"quote_date"`
	Items       datatypes.JSONSlice[LineItem] `json:"items"`
	Note        string                        `gorm:"type:text" json:"note"`
	Title       string                        `gorm:"size:100" json:"title"`
	TaxRate     float64                       `gorm:"not null;default:0.05" json:"tax_rate"`
	Discount    float64                       `gorm:"not null;default:0" json:"discount"`
	VersionNote string                        `gorm:"size:255" json:"version_note"`
	TotalAmount decimal.Decimal               `gorm:"type:decimal(15,2);not null;default:0" json:"total_amount"`
	Timestamp   time.Time                     `gorm:"index" json:"timestamp"`
	CreatedAt   time.Time                     `json:"created_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

// NewQuote returns a quote populated with the canonical defaults.
func NewQuote(tenantID uuid.UUID) Quote {
	return Quote{
		TenantID: tenantID,
		Items:    datatypes.JSONSlice[LineItem]{},
		Title:    DefaultQuoteTitle,
		TaxRate:  DefaultTaxRate,
	}
}

// BeforeCreate generates a UUID before creating a new quote
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Items == nil {
		q.Items = datatypes.JSONSlice[LineItem]{}
	}
	return nil
}

func (Quote) TableName() string {
	return "quotations"
}
