package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// InquiryEmail is the content of a new-inquiry notice.
type InquiryEmail struct {
	CompanyName string
	ClientName  string
	ClientEmail string
	ClientPhone string
	Message     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   sendFunc
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// Configured reports whether an SMTP host and sender are set.
func (s *EmailService) Configured() bool {
	return s.config.SMTPHost != "" && s.config.FromEmail != ""
}

// SendInquiryEmail notifies toEmail about a new inquiry. Replies go to the
// client who submitted it.
func (s *EmailService) SendInquiryEmail(toEmail string, data InquiryEmail) error {
	if toEmail == "" {
		return errors.New("no recipient address")
	}

	htmlContent, err := renderInquiryEmail(data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("New inquiry from %s", data.ClientName)
	message := s.buildHTMLEmail(toEmail, data.ClientEmail, subject, htmlContent)

	return s.sendEmail(toEmail, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, replyTo, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	if replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

var inquiryTemplate = template.Must(template.New("inquiry").Parse(inquiryEmailTemplate))

func renderInquiryEmail(data InquiryEmail) (string, error) {
	var buf bytes.Buffer
	if err := inquiryTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const inquiryEmailTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>New inquiry</title></head>
<body style="margin: 0; padding: 24px; font-family: 'Segoe UI', Tahoma, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 12px;">
        <tr>
            <td style="padding: 32px;">
                <h2 style="color: #1a1a2e; margin: 0 0 16px 0;">Hello {{.CompanyName}},</h2>
                <p style="color: #4a5568; font-size: 16px;">A new inquiry was submitted through your public form.</p>
                <table role="presentation" style="margin: 16px 0; font-size: 15px; color: #1a1a2e;">
                    <tr><td style="padding-right: 16px;">Name</td><td>{{.ClientName}}</td></tr>
                    <tr><td style="padding-right: 16px;">Email</td><td>{{.ClientEmail}}</td></tr>
                    <tr><td style="padding-right: 16px;">Phone</td><td>{{.ClientPhone}}</td></tr>
                </table>
                <pre style="white-space: pre-wrap; color: #4a5568; font-size: 14px; background: #f8fafc; padding: 16px; border-radius: 8px;">{{.Message}}</pre>
            </td>
        </tr>
    </table>
</body>
</html>
`
