package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/editor"
	"github.com/sangkips/quotecrm/internal/application/pricing"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/infrastructure/storage"
	"github.com/sangkips/quotecrm/pkg/apperror"
	"github.com/sangkips/quotecrm/pkg/render"
	"github.com/shopspring/decimal"
)

// Archiver stores rendered documents outside the database.
type Archiver interface {
	ArchiveQuote(ctx context.Context, tenantID, quoteID uuid.UUID, quoteNo string, pdf []byte) (*storage.ArchiveResult, error)
}

// DocumentService renders quotes as PDF. Totals always come from the
// pricing engine so the document matches what the editor showed.
type DocumentService struct {
	quotes   *QuoteService
	settings *SettingsService
	editor   *editor.Editor
	archive  Archiver
}

// NewDocumentService creates a document service. archive may be nil when
// object storage is not configured.
func NewDocumentService(quotes *QuoteService, settings *SettingsService, ed *editor.Editor, archive Archiver) *DocumentService {
	return &DocumentService{
		quotes:   quotes,
		settings: settings,
		editor:   ed,
		archive:  archive,
	}
}

// Document is a rendered file ready to be sent.
type Document struct {
	Filename string
	Content  []byte
}

// RenderQuote renders a saved quote.
func (s *DocumentService) RenderQuote(ctx context.Context, tenantID, id uuid.UUID) (*Document, error) {
	quote, err := s.quotes.GetQuote(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, tenantID, draftOf(quote))
}

// RenderDraft renders the editor draft for preview.
func (s *DocumentService) RenderDraft(ctx context.Context, tenantID uuid.UUID) (*Document, error) {
	view, err := s.editor.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(view.Draft.Items) == 0 {
		return nil, apperror.NewFieldValidationError(map[string]string{"items": "add at least one item"})
	}
	return s.render(ctx, tenantID, view.Draft)
}

// ArchiveQuote renders a saved quote, uploads it and returns a download link.
func (s *DocumentService) ArchiveQuote(ctx context.Context, tenantID, id uuid.UUID) (*storage.ArchiveResult, error) {
	if s.archive == nil {
		return nil, apperror.NewAppError(http.StatusNotImplemented, "document archiving is not configured")
	}
	quote, err := s.quotes.GetQuote(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	doc, err := s.render(ctx, tenantID, draftOf(quote))
	if err != nil {
		return nil, err
	}
	return s.archive.ArchiveQuote(ctx, tenantID, quote.ID, quote.QuoteNo, doc.Content)
}

func (s *DocumentService) render(ctx context.Context, tenantID uuid.UUID, d editor.Draft) (*Document, error) {
	settings, err := s.settings.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	pdf, err := render.QuotePDF(BuildQuoteDocument(settings, d))
	if err != nil {
		return nil, fmt.Errorf("render quote %s: %w", d.QuoteNo, err)
	}

	name := d.QuoteNo
	if name == "" {
		name = "quote"
	}
	return &Document{Filename: name + ".pdf", Content: pdf}, nil
}

// BuildQuoteDocument formats a draft for the renderer.
func BuildQuoteDocument(settings *entity.CompanySettings, d editor.Draft) render.Quote {
	totals := d.Totals()

	lines := make([]render.Line, 0, len(d.Items))
	for _, it := range d.Items {
		if it.IsText() {
			lines = append(lines, render.Line{Text: true, Description: it.Description})
			continue
		}
		lines = append(lines, render.Line{
			Description: it.Description,
			Unit:        it.Unit,
			Quantity:    decimal.NewFromFloat(it.Quantity.Float()).String(),
			UnitPrice:   decimal.NewFromFloat(it.UnitPrice.Float()).String(),
			Amount:      pricing.LineAmount(it).String(),
		})
	}

	return render.Quote{
		Company: render.Company{
			Name:     settings.Name,
			Address:  settings.Address,
			Phone:    settings.Phone,
			Email:    settings.Email,
			TaxID:    settings.TaxID,
			Websites: []string(settings.Websites),
		},
		Title:       d.Title,
		QuoteNo:     d.QuoteNo,
		QuoteDate:   d.QuoteDate,
		VersionNote: d.VersionNote,
		ClientName:  d.ClientName,
		ClientPhone: d.ClientPhone,
		ClientEmail: d.ClientEmail,
		Lines:       lines,
		Subtotal:    totals.Subtotal.String(),
		Discount:    totals.Discount.String(),
		TaxLabel:    "Tax (" + strconv.FormatFloat(totals.TaxRate*100, 'f', -1, 64) + "%)",
		Tax:         totals.Tax.String(),
		Total:       totals.Total.String(),
		Note:        d.Note,
	}
}

func draftOf(q *entity.Quote) editor.Draft {
	return editor.Draft{
		ClientName:  q.ClientName,
		ClientPhone: q.ClientPhone,
		ClientEmail: q.ClientEmail,
		QuoteNo:     q.QuoteNo,
		QuoteDate:   q.QuoteDate,
		Items:       entity.CloneItems(q.Items),
		Note:        q.Note,
		Title:       q.Title,
		TaxRate:     pricing.NormalizeTaxRate(q.TaxRate),
		Discount:    q.Discount,
		VersionNote: q.VersionNote,
	}
}
