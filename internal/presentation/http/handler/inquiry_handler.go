package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotecrm/internal/application/service"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/request"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/pkg/pagination"
)

// InquiryHandler handles inquiry pipeline HTTP requests
type InquiryHandler struct {
	inquiryService *service.InquiryService
}

// NewInquiryHandler creates a new inquiry handler
func NewInquiryHandler(inquiryService *service.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService}
}

// List returns inquiries newest first, optionally filtered by status
func (h *InquiryHandler) List(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	var filter request.InquiryFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.InquiryFilterParams{
		Pagination: &pagination.PaginationParams{Page: filter.Page, PerPage: filter.PerPage},
		Search:     filter.Search,
	}
	if filter.Status != "" {
		status, err := enum.ParseInquiryStatus(filter.Status)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		params.Status = &status
	}

	inquiries, page, err := h.inquiryService.ListInquiries(c.Request.Context(), tenantID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Inquiries retrieved successfully", pagination.NewPaginatedResult(inquiries, page))
}

func (h *InquiryHandler) Get(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	inquiry, err := h.inquiryService.GetInquiry(c.Request.Context(), tenantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inquiry retrieved successfully", inquiry)
}

// UpdateStatus moves the inquiry to another pipeline column
func (h *InquiryHandler) UpdateStatus(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req request.UpdateInquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid status")
		return
	}

	inquiry, err := h.inquiryService.UpdateStatus(c.Request.Context(), tenantID, id, *req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inquiry status updated", inquiry)
}

func (h *InquiryHandler) Rate(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req request.RateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	inquiry, err := h.inquiryService.Rate(c.Request.Context(), tenantID, id, *req.Score)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inquiry rated", inquiry)
}

func (h *InquiryHandler) Update(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req request.UpdateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	inquiry, err := h.inquiryService.UpdateInquiry(c.Request.Context(), &service.UpdateInquiryInput{
		TenantID:    tenantID,
		ID:          id,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		Note:        req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inquiry updated successfully", inquiry)
}

func (h *InquiryHandler) Delete(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.inquiryService.DeleteInquiry(c.Request.Context(), tenantID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inquiry deleted successfully", nil)
}

// Load turns the inquiry into the editor draft
func (h *InquiryHandler) Load(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.inquiryService.LoadIntoEditor(c.Request.Context(), tenantID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Inquiry loaded into editor", nil)
}
