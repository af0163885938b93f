package handler

import (
	"bytes"
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/service"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/sangkips/quotecrm/pkg/export"
)

// DashboardHandler serves pipeline statistics and exports
type DashboardHandler struct {
	dashboardService *service.DashboardService
	exportService    *service.ExportService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService, exportService *service.ExportService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		exportService:    exportService,
	}
}

// GetStats returns the pipeline overview
func (h *DashboardHandler) GetStats(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}

// ExportQuotes downloads every quote as CSV or XLSX (?format=)
func (h *DashboardHandler) ExportQuotes(c *gin.Context) {
	h.download(c, "quotes", h.exportService.ExportQuotes)
}

// ExportInquiries downloads every inquiry as CSV or XLSX (?format=)
func (h *DashboardHandler) ExportInquiries(c *gin.Context) {
	h.download(c, "inquiries", h.exportService.ExportInquiries)
}

type exportFunc func(ctx context.Context, tenantID uuid.UUID, w io.Writer, format export.Format) error

// download buffers the file so a failure still gets a JSON error body.
func (h *DashboardHandler) download(c *gin.Context, base string, write exportFunc) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, apperror.NewBadRequestError(err.Error()))
		return
	}

	var buf bytes.Buffer
	if err := write(c.Request.Context(), tenantID, &buf, format); err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, format.Filename(base), format.ContentType(), buf.Bytes())
}
