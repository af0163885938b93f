package request

import "github.com/sangkips/quotecrm/internal/domain/entity"

// UpdateSettingsRequest represents the company profile form. Website is the
// single-site field of older clients.
type UpdateSettingsRequest struct {
	Name        string              `json:"name" binding:"max=255"`
	Description string              `json:"description"`
	Address     string              `json:"address" binding:"max=500"`
	TaxID       string              `json:"tax_id" binding:"max=50"`
	Phone       string              `json:"phone" binding:"max=50"`
	Email       string              `json:"email" binding:"omitempty,email,max=255"`
	Logo        string              `json:"logo"`
	Website     string              `json:"website"`
	Websites    []string            `json:"websites"`
	BankInfo    string              `json:"bank_info"`
	EmailNotify *entity.EmailNotify `json:"email_notify"`
}
