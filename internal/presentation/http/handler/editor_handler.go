package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/editor"
	"github.com/sangkips/quotecrm/internal/application/service"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/request"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/pkg/apperror"
)

// EditorHandler exposes the owner's quote draft
type EditorHandler struct {
	editor          *editor.Editor
	templateService *service.TemplateService
	clientService   *service.ClientService
	documentService *service.DocumentService
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(
	ed *editor.Editor,
	templateService *service.TemplateService,
	clientService *service.ClientService,
	documentService *service.DocumentService,
) *EditorHandler {
	return &EditorHandler{
		editor:          ed,
		templateService: templateService,
		clientService:   clientService,
		documentService: documentService,
	}
}

// Get returns the draft with its live totals
func (h *EditorHandler) Get(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	view, err := h.editor.Get(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft retrieved successfully", view)
}

// Apply runs a batch of draft operations. Either all apply or none.
func (h *EditorHandler) Apply(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	var req request.EditorOpsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	muts := make([]editor.Mutation, 0, len(req.Ops))
	for _, op := range req.Ops {
		mut, err := h.mutation(c.Request.Context(), tenantID, op)
		if err != nil {
			response.Error(c, err)
			return
		}
		muts = append(muts, mut)
	}

	view, err := h.editor.Update(c.Request.Context(), tenantID, muts...)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft updated successfully", view)
}

// mutation resolves referenced templates and clients before the draft is
// locked, so a missing reference rejects the whole batch.
func (h *EditorHandler) mutation(ctx context.Context, tenantID uuid.UUID, op request.EditorOp) (editor.Mutation, error) {
	switch op.Op {
	case request.OpAddTemplate:
		t, err := h.templateService.GetTemplate(ctx, tenantID, op.TemplateID)
		if err != nil {
			return nil, err
		}
		return editor.AddTemplate(*t), nil
	case request.OpAddManualItem:
		return editor.AddManualItem(), nil
	case request.OpAddTextRow:
		return editor.AddTextRow(), nil
	case request.OpUpdateItem:
		if op.Item == nil {
			return nil, apperror.NewFieldValidationError(map[string]string{"item": "item is required"})
		}
		return editor.UpdateItem(op.ItemID, *op.Item), nil
	case request.OpDeleteItem:
		return editor.DeleteItem(op.ItemID), nil
	case request.OpMoveItem:
		return editor.MoveItem(op.From, op.To), nil
	case request.OpAppendTerm:
		return editor.AppendTerm(op.Term), nil
	case request.OpApplyClient:
		client, err := h.clientService.GetClient(ctx, tenantID, op.ClientID)
		if err != nil {
			return nil, err
		}
		return editor.ApplyClient(*client), nil
	case request.OpSetHeader:
		if op.Header == nil {
			return nil, apperror.NewFieldValidationError(map[string]string{"header": "header is required"})
		}
		return editor.SetHeader(*op.Header), nil
	}
	return nil, apperror.NewBadRequestError("unknown operation " + op.Op)
}

// Save stores the draft as a new quote
func (h *EditorHandler) Save(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	quote, err := h.editor.Save(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quote saved successfully", quote)
}

// Reset discards the draft
func (h *EditorHandler) Reset(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	view, err := h.editor.Reset(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Draft reset", view)
}

// Preview renders the draft as PDF
func (h *EditorHandler) Preview(c *gin.Context) {
	tenantID, ok := ownerTenant(c)
	if !ok {
		return
	}

	doc, err := h.documentService.RenderDraft(c.Request.Context(), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, doc.Filename, "application/pdf", doc.Content)
}
