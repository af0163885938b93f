package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotecrm/internal/application/intake"
	"github.com/sangkips/quotecrm/internal/application/pricing"
	"github.com/sangkips/quotecrm/internal/application/service"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/request"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/internal/presentation/http/middleware"
)

// PublicHandler serves share-link visitors: the catalog and the inquiry form.
type PublicHandler struct {
	settingsService *service.SettingsService
	templateService *service.TemplateService
	intake          intake.Deps
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(settingsService *service.SettingsService, templateService *service.TemplateService, deps intake.Deps) *PublicHandler {
	return &PublicHandler{
		settingsService: settingsService,
		templateService: templateService,
		intake:          deps,
	}
}

// catalogView is the landing page of a share link.
type catalogView struct {
	Profile   entity.PublicProfile     `json:"profile"`
	Templates []entity.ServiceTemplate `json:"templates"`
}

// Catalog returns the tenant's public profile and published services
func (h *PublicHandler) Catalog(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := middleware.GetTenantID(c)

	profile, err := h.settingsService.PublicProfile(ctx, tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	templates, err := h.templateService.PublishedTemplates(ctx, tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Catalog retrieved successfully", catalogView{Profile: profile, Templates: templates})
}

// SubmitInquiry runs the two-step form in one request: the selection in
// order, then the contact details, then submission.
func (h *PublicHandler) SubmitInquiry(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := middleware.GetTenantID(c)

	var req request.SubmitInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	settings, err := h.settingsService.PeekSettings(ctx, tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	templates, err := h.templateService.PublishedTemplates(ctx, tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	wf := intake.New(h.intake, *settings, templates)
	for _, id := range req.Selected {
		if err := wf.Toggle(id); err != nil {
			response.Error(c, err)
			return
		}
	}
	if err := wf.Advance(); err != nil {
		response.Error(c, err)
		return
	}
	if err := wf.SetContact(intake.Contact{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Note:  req.Note,
	}); err != nil {
		response.Error(c, err)
		return
	}

	inquiry, err := wf.Submit(ctx, clientMeta(c, req.Meta))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Inquiry submitted successfully", inquiryReceipt{Inquiry: inquiry, Totals: wf.Totals()})
}

// inquiryReceipt is the stored inquiry with the priced summary the
// confirmation page shows.
type inquiryReceipt struct {
	*entity.Inquiry
	Totals pricing.Totals `json:"totals"`
}

// clientMeta fills environment fields the browser did not send from the
// request headers.
func clientMeta(c *gin.Context, meta entity.InquiryMeta) entity.InquiryMeta {
	if meta.UserAgent == "" {
		meta.UserAgent = c.Request.UserAgent()
	}
	if meta.Language == "" {
		meta.Language = c.GetHeader("Accept-Language")
	}
	if meta.Referrer == "" {
		meta.Referrer = c.Request.Referer()
	}
	return meta
}
