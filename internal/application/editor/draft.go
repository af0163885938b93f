package editor

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/catalog"
	"github.com/sangkips/quotecrm/internal/application/pricing"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/sangkips/quotecrm/pkg/utils"
	"gorm.io/datatypes"
)

const (
	ManualItemDescription = "自訂項目"
	ManualItemUnit        = "式"
	TextRowDescription    = "--- 分隔線 / 備註 ---"

	quoteNoDigits = 2
	termSeparator = "\n\n"
)

// PresetTerms are the canned clauses an operator can append to the note.
var PresetTerms = map[string]string{
	"general":      "本報價單有效期限為 15 天。",
	"rush":         "急件需加收 20% 費用。",
	"confidential": "雙方同意對本專案內容保密。",
}

// Draft is the quote being composed in the editor. It is never persisted
// until saved.
type Draft struct {
	ClientName  string            `json:"client_name"`
	ClientPhone string            `json:"client_phone"`
	ClientEmail string            `json:"client_email"`
	QuoteNo     string            `json:"quote_no"`
	QuoteDate   string            `json:"quote_date"`
	Items       []entity.LineItem `json:"items"`
	Note        string            `json:"note"`
	Title       string            `json:"title"`
	TaxRate     float64           `json:"tax_rate"`
	Discount    float64           `json:"discount"`
	VersionNote string            `json:"version_note"`
}

// NewDraft returns a fresh draft dated now whose note is the bank info.
func NewDraft(now time.Time, bankInfo string) Draft {
	return Draft{
		QuoteNo:   utils.GenerateQuoteNo(now, quoteNoDigits),
		QuoteDate: utils.FormatDate(now),
		Items:     []entity.LineItem{},
		Note:      bankInfo,
		Title:     entity.DefaultQuoteTitle,
		TaxRate:   entity.DefaultTaxRate,
	}
}

// Totals prices the draft.
func (d Draft) Totals() pricing.Totals {
	return pricing.ComputeTotals(d.Items, d.Discount, d.TaxRate)
}

func (d Draft) clone() Draft {
	d.Items = entity.CloneItems(d.Items)
	return d
}

// ToQuote builds the quote persisted on save. The stored total is the one
// computed now and is not recomputed later.
func (d Draft) ToQuote(tenantID uuid.UUID, now time.Time) entity.Quote {
	q := entity.NewQuote(tenantID)
	q.ClientName = d.ClientName
	q.ClientPhone = d.ClientPhone
	q.ClientEmail = d.ClientEmail
	q.QuoteNo = d.QuoteNo
	q.QuoteDate = d.QuoteDate
	q.Items = datatypes.JSONSlice[entity.LineItem](entity.CloneItems(d.Items))
	q.Note = d.Note
	if d.Title != "" {
		q.Title = d.Title
	}
	q.TaxRate = pricing.NormalizeTaxRate(d.TaxRate)
	q.Discount = d.Discount
	q.VersionNote = d.VersionNote
	q.TotalAmount = d.Totals().Total
	q.Timestamp = now
	return q
}

// Mutation is one edit applied to a draft. A mutation that returns an
// error leaves the draft untouched.
type Mutation func(d *Draft) error

// AddTemplate appends every item of t priced at its midpoint.
func AddTemplate(t entity.ServiceTemplate) Mutation {
	return func(d *Draft) error {
		d.Items = append(d.Items, catalog.ExpandTemplate(t)...)
		return nil
	}
}

func AddManualItem() Mutation {
	return func(d *Draft) error {
		d.Items = append(d.Items, entity.LineItem{
			ID:          uuid.NewString(),
			Type:        enum.ItemTypeService,
			Description: ManualItemDescription,
			Unit:        ManualItemUnit,
			Quantity:    1,
			IsManual:    true,
		})
		return nil
	}
}

func AddTextRow() Mutation {
	return func(d *Draft) error {
		d.Items = append(d.Items, entity.LineItem{
			ID:          uuid.NewString(),
			Type:        enum.ItemTypeText,
			Description: TextRowDescription,
		})
		return nil
	}
}

// ItemPatch carries the item fields to change; nil fields are kept.
type ItemPatch struct {
	Description *string        `json:"description"`
	Unit        *string        `json:"unit"`
	Quantity    *entity.Amount `json:"quantity"`
	UnitPrice   *entity.Amount `json:"unit_price"`
}

func UpdateItem(id string, p ItemPatch) Mutation {
	return func(d *Draft) error {
		i := d.indexOf(id)
		if i < 0 {
			return apperror.NewNotFoundError("Item")
		}
		it := &d.Items[i]
		if p.Description != nil {
			it.Description = *p.Description
		}
		if p.Unit != nil {
			it.Unit = *p.Unit
		}
		if p.Quantity != nil {
			it.Quantity = *p.Quantity
		}
		if p.UnitPrice != nil {
			it.UnitPrice = *p.UnitPrice
		}
		return nil
	}
}

func DeleteItem(id string) Mutation {
	return func(d *Draft) error {
		i := d.indexOf(id)
		if i < 0 {
			return apperror.NewNotFoundError("Item")
		}
		d.Items = append(d.Items[:i], d.Items[i+1:]...)
		return nil
	}
}

// MoveItem removes the item at from and reinserts it at to.
func MoveItem(from, to int) Mutation {
	return func(d *Draft) error {
		n := len(d.Items)
		if from < 0 || from >= n || to < 0 || to >= n {
			return apperror.NewBadRequestError("item position out of range")
		}
		it := d.Items[from]
		d.Items = append(d.Items[:from], d.Items[from+1:]...)
		d.Items = append(d.Items[:to], append([]entity.LineItem{it}, d.Items[to:]...)...)
		return nil
	}
}

// AppendTerm adds a preset clause to the note, separated by a blank line.
func AppendTerm(key string) Mutation {
	return func(d *Draft) error {
		term, ok := PresetTerms[key]
		if !ok {
			return apperror.NewBadRequestError("unknown term " + key)
		}
		if d.Note != "" {
			d.Note += termSeparator
		}
		d.Note += term
		return nil
	}
}

// ApplyClient copies the contact by value; later edits to the client do
// not reach the draft.
func ApplyClient(c entity.Client) Mutation {
	return func(d *Draft) error {
		d.ClientName = c.Name
		d.ClientPhone = c.Phone
		d.ClientEmail = c.Email
		return nil
	}
}

// HeaderPatch carries the header fields to change; nil fields are kept.
type HeaderPatch struct {
	ClientName  *string  `json:"client_name"`
	ClientPhone *string  `json:"client_phone"`
	ClientEmail *string  `json:"client_email"`
	QuoteNo     *string  `json:"quote_no"`
	QuoteDate   *string  `json:"quote_date"`
	Note        *string  `json:"note"`
	Title       *string  `json:"title"`
	TaxRate     *float64 `json:"tax_rate"`
	Discount    *float64 `json:"discount"`
	VersionNote *string  `json:"version_note"`
}

func SetHeader(p HeaderPatch) Mutation {
	return func(d *Draft) error {
		set := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		set(&d.ClientName, p.ClientName)
		set(&d.ClientPhone, p.ClientPhone)
		set(&d.ClientEmail, p.ClientEmail)
		set(&d.QuoteNo, p.QuoteNo)
		set(&d.QuoteDate, p.QuoteDate)
		set(&d.Note, p.Note)
		set(&d.Title, p.Title)
		set(&d.VersionNote, p.VersionNote)
		if p.TaxRate != nil {
			d.TaxRate = *p.TaxRate
		}
		if p.Discount != nil {
			d.Discount = *p.Discount
		}
		return nil
	}
}

func (d *Draft) indexOf(id string) int {
	for i, it := range d.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
