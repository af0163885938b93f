package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotecrm/internal/application/service"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/request"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/internal/presentation/http/middleware"
)

// SettingsHandler handles company profile HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings returns the owner's profile, creating the empty one on first read
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	settings, err := h.settingsService.GetSettings(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", settings)
}

// UpdateSettings replaces the owner's profile
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	var req request.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), &service.UpdateSettingsInput{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		TaxID:       req.TaxID,
		Phone:       req.Phone,
		Email:       req.Email,
		Logo:        req.Logo,
		Website:     req.Website,
		Websites:    req.Websites,
		BankInfo:    req.BankInfo,
		EmailNotify: req.EmailNotify,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", settings)
}

// PublicProfile returns the share-link view of a tenant's profile
func (h *SettingsHandler) PublicProfile(c *gin.Context) {
	profile, err := h.settingsService.PublicProfile(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", profile)
}
