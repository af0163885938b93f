package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// StatusCount is the number of inquiries in one Kanban column
type StatusCount struct {
	Status enum.InquiryStatus
	Count  int64
}

// MonthlyQuoteTotal aggregates saved quotes by quote month (YYYY-MM)
type MonthlyQuoteTotal struct {
	Month      string          `json:"month"`
	QuoteCount int64           `json:"quote_count"`
	Total      decimal.Decimal `json:"total"`
}

// AnalyticsRepository defines aggregate queries for the dashboard
type AnalyticsRepository interface {
	CountInquiries(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountQuotes(ctx context.Context, tenantID uuid.UUID) (int64, error)
	InquiryStatusBreakdown(ctx context.Context, tenantID uuid.UUID) ([]StatusCount, error)
	QuoteTotalsByMonth(ctx context.Context, tenantID uuid.UUID, months int) ([]MonthlyQuoteTotal, error)
}
