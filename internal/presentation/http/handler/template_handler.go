package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotecrm/internal/application/service"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/request"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
)

// TemplateHandler handles service template HTTP requests
type TemplateHandler struct {
	templateService *service.TemplateService
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) List(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Templates retrieved successfully", templates)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	template, err := h.templateService.GetTemplate(c.Request.Context(), tenantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Template retrieved successfully", template)
}

func (h *TemplateHandler) Create(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	var req request.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), &service.TemplateInput{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Items:       req.Items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Template created successfully", template)
}

func (h *TemplateHandler) Update(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req request.TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), id, &service.TemplateInput{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Items:       req.Items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Template updated successfully", template)
}

func (h *TemplateHandler) Delete(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), tenantID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Template deleted successfully", nil)
}

// Reset replaces the whole catalog with the default templates
func (h *TemplateHandler) Reset(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	templates, err := h.templateService.ResetToDefaults(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Templates reset to defaults", templates)
}
