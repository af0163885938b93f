package request

import "github.com/sangkips/quotecrm/internal/domain/enum"

// InquiryFilterRequest represents inquiry list filters
type InquiryFilterRequest struct {
	Search  string `form:"search"`
	Status  string `form:"status"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// UpdateInquiryStatusRequest moves an inquiry to another column. Status is
// accepted by name or by number.
type UpdateInquiryStatusRequest struct {
	Status *enum.InquiryStatus `json:"status" binding:"required"`
}

type RateInquiryRequest struct {
	Score *int `json:"score" binding:"required"`
}

// UpdateInquiryRequest edits the contact fields of an inquiry
type UpdateInquiryRequest struct {
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientEmail string `json:"client_email"`
	Note        string `json:"note"`
}
