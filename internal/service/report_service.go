package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ops-dashboard/internal/analytics"
	"ops-dashboard/internal/models"
	"ops-dashboard/internal/report"
)

// ReportService turns the budget and capacity aggregations into a workbook.
type ReportService struct {
	analytics *AnalyticsService
	archiver  report.Archiver
	logger    *zap.Logger
}

func NewReportService(analytics *AnalyticsService, archiver report.Archiver, logger *zap.Logger) *ReportService {
	return &ReportService{analytics: analytics, archiver: archiver, logger: logger}
}

// BudgetWorkbook renders the workbook and its download file name.
func (s *ReportService) BudgetWorkbook(ctx context.Context, f analytics.Filter, year int) ([]byte, string, error) {
	budget, err := s.analytics.Budget(ctx, f, year)
	if err != nil {
		return nil, "", err
	}
	capacity, err := s.analytics.CurrentCapacity(ctx, f)
	if err != nil {
		return nil, "", err
	}

	wb, err := report.Workbook(budget, capacity)
	if err != nil {
		return nil, "", fmt.Errorf("error building workbook: %w", err)
	}
	defer wb.Close()

	data, err := report.Render(wb)
	if err != nil {
		return nil, "", err
	}
	return data, s.fileName(year), nil
}

// ArchiveBudget renders the workbook and uploads it under reports/.
func (s *ReportService) ArchiveBudget(ctx context.Context, f analytics.Filter, year int) (*models.ArchiveResponse, error) {
	data, name, err := s.BudgetWorkbook(ctx, f, year)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("reports/%s/%s", s.analytics.Now().UTC().Format("20060102T150405"), name)

	resp, err := s.archiver.Archive(ctx, key, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("archived budget report", zap.String("bucket", resp.Bucket), zap.String("key", resp.Key))
	return resp, nil
}

func (s *ReportService) fileName(year int) string {
	if year == 0 {
		return "budget-all.xlsx"
	}
	return fmt.Sprintf("budget-%d.xlsx", year)
}
