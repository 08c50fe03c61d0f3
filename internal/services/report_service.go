package services

import (
	"context"

	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
)

type ReportServiceInterface interface {
	GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error)
}

type reportService struct {
	reportRepo repositories.ReportRepositoryInterface
	logger     *zap.Logger
}

func NewReportService(reportRepo repositories.ReportRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &reportService{reportRepo: reportRepo, logger: logger}
}

func (s *reportService) GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error) {
	items, total, err := s.reportRepo.GetReport(ctx, filter)
	if err != nil {
		s.logger.Error("Ошибка при формировании отчета", zap.Error(err))
		return nil, 0, err
	}
	return items, total, nil
}
