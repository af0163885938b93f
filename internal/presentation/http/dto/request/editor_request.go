package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/editor"
)

// Editor operation names accepted by EditorOpsRequest.
const (
	OpAddTemplate   = "add_template"
	OpAddManualItem = "add_manual_item"
	OpAddTextRow    = "add_text_row"
	OpUpdateItem    = "update_item"
	OpDeleteItem    = "delete_item"
	OpMoveItem      = "move_item"
	OpAppendTerm    = "append_term"
	OpApplyClient   = "apply_client"
	OpSetHeader     = "set_header"
)

// EditorOp is one draft mutation. Only the fields of its kind are read.
type EditorOp struct {
	Op         string              `json:"op" binding:"required"`
	TemplateID uuid.UUID           `json:"template_id"`
	ClientID   uuid.UUID           `json:"client_id"`
	ItemID     string              `json:"item_id"`
	Item       *editor.ItemPatch   `json:"item"`
	From       int                 `json:"from"`
	To         int                 `json:"to"`
	Term       string              `json:"term"`
	Header     *editor.HeaderPatch `json:"header"`
}

// EditorOpsRequest applies its operations in order, all or nothing.
type EditorOpsRequest struct {
	Ops []EditorOp `json:"ops" binding:"required,min=1,dive"`
}
