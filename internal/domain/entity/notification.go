package entity

import "fmt"

// InquiryNotification is the message sent to the tenant when a visitor
// submits an inquiry. Field names follow the relay template variables.
type InquiryNotification struct {
	ToName      string `json:"to_name"`
	FromName    string `json:"from_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
	ReplyTo     string `json:"reply_to"`
	Message     string `json:"message"`
}

// NewInquiryNotification composes the notification for a stored inquiry.
// selected is the number of services the visitor picked.
func NewInquiryNotification(companyName string, inquiry *Inquiry, selected int) InquiryNotification {
	meta := inquiry.Meta.Data()
	return InquiryNotification{
		ToName:      companyName,
		FromName:    inquiry.ClientName,
		ClientEmail: inquiry.ClientEmail,
		ClientPhone: inquiry.ClientPhone,
		ReplyTo:     inquiry.ClientEmail,
		Message: fmt.Sprintf("Inquiry: %d services selected.\nNote: %s\n\n[Client Info]\nDevice: %s\nSource: %s",
			selected, inquiry.Note, meta.Platform, meta.Referrer),
	}
}
