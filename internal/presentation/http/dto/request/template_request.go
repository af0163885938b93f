package request

import "github.com/sangkips/quotecrm/internal/domain/entity"

// TemplateRequest represents a service template create or update request
type TemplateRequest struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Items       []entity.TemplateItem `json:"items"`
}
