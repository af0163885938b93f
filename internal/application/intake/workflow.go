// Package intake implements the public request form as a three-step state
// machine: pick services, enter contact details, submitted.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/catalog"
	"github.com/sangkips/quotecrm/internal/application/pricing"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/internal/infrastructure/metrics"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/sangkips/quotecrm/pkg/utils"
	"gorm.io/datatypes"
)

// Step is a state of the workflow.
type Step int

const (
	StepSelectingServices Step = iota
	StepEnteringContactInfo
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepEnteringContactInfo:
		return "entering_contact_info"
	case StepSubmitted:
		return "submitted"
	default:
		return "selecting_services"
	}
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	defaultReferrer = "Direct"
	defaultPlatform = "Unknown"
	quoteNoDigits   = 3
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^(\+|00)?[0-9\-\s]{8,}$`)

	ErrWrongStep = apperror.NewAppError(http.StatusConflict, "action not allowed in the current step")
)

// Contact is what the visitor types in the second step.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Note  string `json:"note"`
}

// Validate returns field-keyed errors; an empty map means valid.
func (c Contact) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(c.Name) == "" {
		errs["name"] = "name is required"
	}
	if !emailPattern.MatchString(c.Email) {
		errs["email"] = "email format is invalid"
	}
	if !phonePattern.MatchString(c.Phone) {
		errs["phone"] = "phone format is invalid"
	}
	return errs
}

// Store persists submitted inquiries.
type Store interface {
	Create(ctx context.Context, inquiry *entity.Inquiry) error
}

// Dispatcher sends the new-inquiry notification in the background.
type Dispatcher interface {
	Enabled(settings *entity.CompanySettings) bool
	Dispatch(settings entity.CompanySettings, n entity.InquiryNotification)
}

// Deps are the collaborators shared by every workflow of a process.
type Deps struct {
	Store      Store
	Dispatcher Dispatcher
	Notifier   repository.ChangeNotifier
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Clock      func() time.Time
}

// View is a read-only copy of the workflow for rendering.
type View struct {
	Step     Step              `json:"step"`
	Selected []uuid.UUID       `json:"selected"`
	Contact  Contact           `json:"contact"`
	Errors   map[string]string `json:"errors,omitempty"`
	Inquiry  *entity.Inquiry   `json:"inquiry,omitempty"`
}

// Workflow is one visitor session for one tenant. Methods are safe for
// concurrent use; a submission holds the lock until the write completes so
// double submits cannot create two inquiries.
type Workflow struct {
	deps      Deps
	tenantID  uuid.UUID
	settings  entity.CompanySettings
	templates []entity.ServiceTemplate

	mu       sync.Mutex
	step     Step
	selected []uuid.UUID
	contact  Contact
	errs     map[string]string
	inquiry  *entity.Inquiry
	totals   pricing.Totals
}

// New starts a workflow over the tenant's published settings and catalog.
// An empty catalog falls back to the built-in modules.
func New(deps Deps, settings entity.CompanySettings, templates []entity.ServiceTemplate) *Workflow {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Workflow{
		deps:      deps,
		tenantID:  settings.TenantID,
		settings:  settings,
		templates: catalog.Resolve(templates),
	}
}

// Templates returns the catalog the visitor chooses from.
func (w *Workflow) Templates() []entity.ServiceTemplate {
	return w.templates
}

func (w *Workflow) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := View{
		Step:     w.step,
		Selected: append([]uuid.UUID{}, w.selected...),
		Contact:  w.contact,
	}
	if len(w.errs) > 0 {
		v.Errors = make(map[string]string, len(w.errs))
		for k, msg := range w.errs {
			v.Errors[k] = msg
		}
	}
	if w.inquiry != nil {
		inq := *w.inquiry
		v.Inquiry = &inq
	}
	return v
}

// Toggle adds templateID to the selection or removes it when present.
// Selection order is the order of the first toggle.
func (w *Workflow) Toggle(templateID uuid.UUID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepSelectingServices {
		return ErrWrongStep
	}
	if !w.knows(templateID) {
		return apperror.NewBadRequestError(fmt.Sprintf("unknown service %s", templateID))
	}

	for i, id := range w.selected {
		if id == templateID {
			w.selected = append(w.selected[:i], w.selected[i+1:]...)
			return nil
		}
	}
	w.selected = append(w.selected, templateID)
	delete(w.errs, "services")
	return nil
}

// Advance moves to the contact step. It requires at least one service.
func (w *Workflow) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepSelectingServices {
		return ErrWrongStep
	}
	if len(w.selected) == 0 {
		w.errs = map[string]string{"services": "select at least one service"}
		return apperror.NewFieldValidationError(w.errs)
	}
	w.errs = nil
	w.step = StepEnteringContactInfo
	return nil
}

// Back returns from the contact step to service selection.
func (w *Workflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepEnteringContactInfo {
		return ErrWrongStep
	}
	w.step = StepSelectingServices
	return nil
}

// SetContact replaces the contact fields typed so far.
func (w *Workflow) SetContact(c Contact) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepEnteringContactInfo {
		return ErrWrongStep
	}
	w.contact = c
	return nil
}

// Submit validates the contact, prices the selection and stores the
// inquiry. The step only becomes Submitted after the write succeeds. The
// notification is dispatched afterwards and its outcome is not awaited.
func (w *Workflow) Submit(ctx context.Context, env entity.InquiryMeta) (*entity.Inquiry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepEnteringContactInfo {
		return nil, ErrWrongStep
	}
	if errs := w.contact.Validate(); len(errs) > 0 {
		w.errs = errs
		return nil, apperror.NewFieldValidationError(errs)
	}
	w.errs = nil

	now := w.deps.Clock()
	env.Timestamp = now
	if env.Referrer == "" {
		env.Referrer = defaultReferrer
	}
	if env.Platform == "" {
		env.Platform = defaultPlatform
	}

	items := catalog.Expand(w.templates, w.selected)
	totals := pricing.ComputeTotals(items, 0, pricing.DefaultTaxRate)

	inquiry := &entity.Inquiry{
		TenantID:    w.tenantID,
		ClientName:  strings.TrimSpace(w.contact.Name),
		ClientPhone: strings.TrimSpace(w.contact.Phone),
		ClientEmail: strings.TrimSpace(w.contact.Email),
		Note:        w.contact.Note,
		QuoteNo:     utils.GenerateQuoteNo(now, quoteNoDigits),
		Date:        utils.FormatDate(now),
		Items:       items,
		TaxRate:     totals.TaxRate,
		Discount:    0,
		TotalAmount: totals.Total,
		Status:      enum.InquiryStatusNew,
		Meta:        datatypes.NewJSONType(env),
		Timestamp:   now,
	}

	err := w.deps.Store.Create(ctx, inquiry)
	w.deps.Metrics.InquirySubmitted(err)
	if err != nil {
		w.deps.Logger.Error("storing inquiry failed", "tenant_id", w.tenantID, "error", err)
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.Wrap(err, http.StatusServiceUnavailable, "submission failed, please try again")
	}

	w.step = StepSubmitted
	w.inquiry = inquiry
	w.totals = totals
	w.deps.Logger.Info("inquiry submitted",
		"tenant_id", w.tenantID,
		"inquiry_id", inquiry.ID,
		"items", len(inquiry.Items))

	if w.deps.Notifier != nil {
		w.deps.Notifier.Notify(ctx, enum.CollectionInquiries, w.tenantID)
	}
	if w.deps.Dispatcher != nil && w.deps.Dispatcher.Enabled(&w.settings) {
		w.deps.Dispatcher.Dispatch(w.settings, entity.NewInquiryNotification(w.settings.Name, inquiry, len(w.selected)))
	}

	stored := *inquiry
	return &stored, nil
}

// Totals returns the pricing computed at submission. It is zero before
// the inquiry is stored.
func (w *Workflow) Totals() pricing.Totals {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totals
}

// Restart clears a submitted session and returns to service selection.
// The previously stored inquiry is unaffected.
func (w *Workflow) Restart() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepSubmitted {
		return ErrWrongStep
	}
	w.step = StepSelectingServices
	w.selected = nil
	w.contact = Contact{}
	w.errs = nil
	w.inquiry = nil
	w.totals = pricing.Totals{}
	return nil
}

func (w *Workflow) knows(id uuid.UUID) bool {
	for _, t := range w.templates {
		if t.ID == id {
			return true
		}
	}
	return false
}
