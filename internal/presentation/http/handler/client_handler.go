package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/service"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/request"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/pkg/pagination"
)

// ClientHandler handles address book HTTP requests
type ClientHandler struct {
	clientService *service.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// List handles listing clients (supports both page-based and cursor-based pagination)
func (h *ClientHandler) List(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	search := c.Query("search")

	if c.Query("cursor") != "" || c.Query("limit") != "" {
		h.listWithCursor(c, tenantID, search)
		return
	}

	clients, page, err := h.clientService.ListClients(c.Request.Context(), tenantID, pageParams(c), search)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Clients retrieved successfully", pagination.NewPaginatedResult(clients, page))
}

func (h *ClientHandler) listWithCursor(c *gin.Context, tenantID uuid.UUID, search string) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))
	params := &pagination.CursorParams{
		Cursor:    c.Query("cursor"),
		Direction: pagination.CursorDirection(c.DefaultQuery("direction", "next")),
		Limit:     limit,
	}

	clients, page, err := h.clientService.ListClientsWithCursor(c.Request.Context(), tenantID, params, search)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithCursor(c, "Clients retrieved successfully", pagination.NewCursorPaginatedResult(clients, page))
}

func (h *ClientHandler) Get(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), tenantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client retrieved successfully", client)
}

func (h *ClientHandler) Create(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	var req request.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), &service.ClientInput{
		TenantID: tenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client created successfully", client)
}

// SaveFromDraft stores the contact typed in the quote editor
func (h *ClientHandler) SaveFromDraft(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	client, err := h.clientService.SaveFromDraft(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Client saved from draft", client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req request.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), id, &service.ClientInput{
		TenantID: tenantID,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client updated successfully", client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), tenantID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client deleted successfully", nil)
}

// Apply copies the client into the editor draft
func (h *ClientHandler) Apply(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.clientService.ApplyToDraft(c.Request.Context(), tenantID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Client applied to draft", view)
}
