package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/entity"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/pkg/export"
)

var (
	quoteExportHeaders   = []string{"date", "quote_no", "version_note", "client_name", "phone", "email", "total_amount", "items"}
	inquiryExportHeaders = []string{"date", "client_name", "phone", "email", "status", "note", "items"}
)

// ExportService produces spreadsheet downloads of history and inquiries
type ExportService struct {
	quoteRepo   repository.QuoteRepository
	inquiryRepo repository.InquiryRepository
}

// NewExportService creates a new export service
func NewExportService(quoteRepo repository.QuoteRepository, inquiryRepo repository.InquiryRepository) *ExportService {
	return &ExportService{
		quoteRepo:   quoteRepo,
		inquiryRepo: inquiryRepo,
	}
}

// ExportQuotes writes every saved quote, newest first. The total is the
// stored one and is not recomputed.
func (s *ExportService) ExportQuotes(ctx context.Context, tenantID uuid.UUID, w io.Writer, format export.Format) error {
	quotes, err := s.quoteRepo.ListAll(ctx, tenantID)
	if err != nil {
		return err
	}
	return export.Write(w, format, QuoteTable(quotes))
}

// ExportInquiries writes every inquiry, newest first.
func (s *ExportService) ExportInquiries(ctx context.Context, tenantID uuid.UUID, w io.Writer, format export.Format) error {
	inquiries, err := s.inquiryRepo.ListAll(ctx, tenantID)
	if err != nil {
		return err
	}
	return export.Write(w, format, InquiryTable(inquiries))
}

func QuoteTable(quotes []entity.Quote) export.Table {
	rows := make([][]string, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, []string{
			q.QuoteDate,
			q.QuoteNo,
			q.VersionNote,
			q.ClientName,
			q.ClientPhone,
			q.ClientEmail,
			q.TotalAmount.String(),
			entity.DescribeItems(q.Items),
		})
	}
	return export.Table{Sheet: "Quotes", Headers: quoteExportHeaders, Rows: rows}
}

func InquiryTable(inquiries []entity.Inquiry) export.Table {
	rows := make([][]string, 0, len(inquiries))
	for _, inq := range inquiries {
		rows = append(rows, []string{
			inq.Date,
			inq.ClientName,
			inq.ClientPhone,
			inq.ClientEmail,
			inq.Status.String(),
			inq.Note,
			entity.DescribeItems(inq.Items),
		})
	}
	return export.Table{Sheet: "Inquiries", Headers: inquiryExportHeaders, Rows: rows}
}
