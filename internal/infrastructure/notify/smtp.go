package notify

import (
	"context"

	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/pkg/email"
)

// SMTPRelay mails the notification to the company email address.
type SMTPRelay struct {
	mailer *email.EmailService
}

func NewSMTPRelay(mailer *email.EmailService) *SMTPRelay {
	return &SMTPRelay{mailer: mailer}
}

func (r *SMTPRelay) Name() string { return "smtp" }

func (r *SMTPRelay) Enabled(settings *entity.CompanySettings) bool {
	return r.mailer.Configured() && settings.Email != ""
}

// Send ignores ctx cancellation once the SMTP exchange has started;
// net/smtp has no context support.
func (r *SMTPRelay) Send(ctx context.Context, settings *entity.CompanySettings, n entity.InquiryNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.mailer.SendInquiryEmail(settings.Email, email.InquiryEmail{
		CompanyName: n.ToName,
		ClientName:  n.FromName,
		ClientEmail: n.ClientEmail,
		ClientPhone: n.ClientPhone,
		Message:     n.Message,
	})
}
