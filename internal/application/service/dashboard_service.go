package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotecrm/internal/application/pricing"
	"github.com/sangkips/quotecrm/internal/domain/enum"
	"github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/shopspring/decimal"
)

const dashboardMonths = 12

// DashboardService provides dashboard statistics
type DashboardService struct {
	analyticsRepo repository.AnalyticsRepository
	inquiryRepo   repository.InquiryRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(analyticsRepo repository.AnalyticsRepository, inquiryRepo repository.InquiryRepository) *DashboardService {
	return &DashboardService{
		analyticsRepo: analyticsRepo,
		inquiryRepo:   inquiryRepo,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalInquiries   int64                          `json:"total_inquiries"`
	NewInquiries     int64                          `json:"new_inquiries"`
	TotalQuotes      int64                          `json:"total_quotes"`
	PotentialRevenue decimal.Decimal                `json:"potential_revenue"`
	StatusBreakdown  []StatusPoint                  `json:"status_breakdown"`
	MonthlyQuotes    []repository.MonthlyQuoteTotal `json:"monthly_quotes"`
}

// StatusPoint is one Kanban column with its inquiry count
type StatusPoint struct {
	Status enum.InquiryStatus `json:"status"`
	Count  int64              `json:"count"`
}

// GetDashboardStats returns dashboard statistics. Potential revenue is the
// undiscounted, untaxed value of everything visitors have asked for.
func (s *DashboardService) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{PotentialRevenue: decimal.Zero}

	total, err := s.analyticsRepo.CountInquiries(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	stats.TotalInquiries = total

	quotes, err := s.analyticsRepo.CountQuotes(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	stats.TotalQuotes = quotes

	breakdown, err := s.analyticsRepo.InquiryStatusBreakdown(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	counts := make(map[enum.InquiryStatus]int64, len(breakdown))
	for _, b := range breakdown {
		counts[b.Status] += b.Count
	}
	for _, st := range []enum.InquiryStatus{
		enum.InquiryStatusNew,
		enum.InquiryStatusContacted,
		enum.InquiryStatusNegotiating,
		enum.InquiryStatusClosed,
	} {
		stats.StatusBreakdown = append(stats.StatusBreakdown, StatusPoint{Status: st, Count: counts[st]})
	}
	stats.NewInquiries = counts[enum.InquiryStatusNew]

	inquiries, err := s.inquiryRepo.ListAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	for _, inq := range inquiries {
		stats.PotentialRevenue = stats.PotentialRevenue.Add(pricing.Subtotal(inq.Items))
	}

	monthly, err := s.analyticsRepo.QuoteTotalsByMonth(ctx, tenantID, dashboardMonths)
	if err != nil {
		return nil, err
	}
	stats.MonthlyQuotes = monthly

	return stats, nil
}
