package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotecrm/internal/application/service"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/pkg/pagination"
)

// QuoteHandler handles saved quote HTTP requests
type QuoteHandler struct {
	quoteService    *service.QuoteService
	documentService *service.DocumentService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoteService *service.QuoteService, documentService *service.DocumentService) *QuoteHandler {
	return &QuoteHandler{
		quoteService:    quoteService,
		documentService: documentService,
	}
}

// List returns quotes newest first
func (h *QuoteHandler) List(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	quotes, page, err := h.quoteService.ListQuotes(c.Request.Context(), tenantID, &repository.QuoteFilterParams{
		Pagination: pageParams(c),
		Search:     c.Query("search"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Quotes retrieved successfully", pagination.NewPaginatedResult(quotes, page))
}

func (h *QuoteHandler) Get(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), tenantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote retrieved successfully", quote)
}

func (h *QuoteHandler) Delete(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.quoteService.DeleteQuote(c.Request.Context(), tenantID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote deleted successfully", nil)
}

// Load replaces the editor draft with a copy of the quote
func (h *QuoteHandler) Load(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.quoteService.LoadIntoEditor(c.Request.Context(), tenantID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote loaded into editor", nil)
}

// PDF downloads the rendered quote
func (h *QuoteHandler) PDF(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.RenderQuote(c.Request.Context(), tenantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, doc.Filename, "application/pdf", doc.Content)
}

// Archive uploads the rendered quote to object storage
func (h *QuoteHandler) Archive(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.documentService.ArchiveQuote(c.Request.Context(), tenantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quote archived successfully", result)
}
