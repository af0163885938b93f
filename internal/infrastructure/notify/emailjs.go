package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sangkips/quotecrm/internal/domain/entity"
)

// EmailJSRelay posts to the EmailJS REST API using the credentials stored
// in the tenant's company settings.
type EmailJSRelay struct {
	endpoint string
	client   *http.Client
}

func NewEmailJSRelay(endpoint string, client *http.Client) *EmailJSRelay {
	if client == nil {
		client = http.DefaultClient
	}
	return &EmailJSRelay{endpoint: endpoint, client: client}
}

func (r *EmailJSRelay) Name() string { return "emailjs" }

func (r *EmailJSRelay) Enabled(settings *entity.CompanySettings) bool {
	return settings.EmailNotify.Data().Configured()
}

type emailJSRequest struct {
	ServiceID      string                     `json:"service_id"`
	TemplateID     string                     `json:"template_id"`
	UserID         string                     `json:"user_id"`
	TemplateParams entity.InquiryNotification `json:"template_params"`
}

func (r *EmailJSRelay) Send(ctx context.Context, settings *entity.CompanySettings, n entity.InquiryNotification) error {
	creds := settings.EmailNotify.Data()
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      creds.ServiceID,
		TemplateID:     creds.TemplateID,
		UserID:         creds.PublicKey,
		TemplateParams: n,
	})
	if err != nil {
		return fmt.Errorf("encode emailjs request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("emailjs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs responded %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
