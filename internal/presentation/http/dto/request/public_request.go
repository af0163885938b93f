package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
)

// SubmitInquiryRequest is the public two-step form sent in one request:
// the selected services in selection order and the contact details.
type SubmitInquiryRequest struct {
	Selected []uuid.UUID        `json:"selected"`
	Name     string             `json:"name"`
	Phone    string             `json:"phone"`
	Email    string             `json:"email"`
	Note     string             `json:"note"`
	Meta     entity.InquiryMeta `json:"meta"`
}
