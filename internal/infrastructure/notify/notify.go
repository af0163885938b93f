// Package notify delivers new-inquiry notifications to the tenant through
// an external relay. Delivery is best effort: failures are logged and
// counted, never returned to the visitor.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sangkips/quotecrm/internal/config"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/infrastructure/metrics"
	"github.com/sangkips/quotecrm/pkg/email"
)

// Relay sends one notification synchronously.
type Relay interface {
	Name() string
	// Enabled reports whether settings carry what this relay needs.
	Enabled(settings *entity.CompanySettings) bool
	Send(ctx context.Context, settings *entity.CompanySettings, n entity.InquiryNotification) error
}

// NewRelay selects the relay named by cfg.Driver.
func NewRelay(cfg config.NotifyConfig, smtpCfg config.SMTPConfig) (Relay, error) {
	switch cfg.Driver {
	case "", "emailjs":
		return NewEmailJSRelay(cfg.EmailJSURL, &http.Client{Timeout: cfg.HTTPTimeout}), nil
	case "smtp":
		return NewSMTPRelay(email.NewEmailService(email.EmailConfig{
			SMTPHost:     smtpCfg.Host,
			SMTPPort:     smtpCfg.Port,
			SMTPUsername: smtpCfg.Username,
			SMTPPassword: smtpCfg.Password,
			FromName:     smtpCfg.FromName,
			FromEmail:    smtpCfg.From,
		})), nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}

// Dispatcher runs relay sends in the background.
type Dispatcher struct {
	relay   Relay
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

// NewDispatcher wraps relay. Each send gets its own timeout and never
// inherits a request context.
func NewDispatcher(relay Relay, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{relay: relay, timeout: timeout, logger: logger, metrics: m}
}

func (d *Dispatcher) Enabled(settings *entity.CompanySettings) bool {
	return d != nil && d.relay != nil && settings != nil && d.relay.Enabled(settings)
}

// Dispatch queues a send and returns immediately.
func (d *Dispatcher) Dispatch(settings entity.CompanySettings, n entity.InquiryNotification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.relay.Send(ctx, &settings, n)
		d.metrics.NotificationSent(d.relay.Name(), err)
		if err != nil {
			d.logger.Warn("inquiry notification failed",
				"relay", d.relay.Name(),
				"tenant_id", settings.TenantID,
				"error", err)
			return
		}
		d.logger.Info("inquiry notification sent", "relay", d.relay.Name(), "tenant_id", settings.TenantID)
	}()
}

// Wait blocks until queued sends finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
