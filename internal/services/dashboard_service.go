package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

type DashboardServiceInterface interface {
	GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error)
	GetCalendar(ctx context.Context, year int, month time.Month) ([]dto.CalendarDayDTO, error)
}

// DashboardService считает сводку по живому состоянию хранилища.
// Каждый счетчик - независимый запрос, кеширования нет намеренно.
type DashboardService struct {
	dashboardRepo repositories.DashboardRepositoryInterface
	logger        *zap.Logger
	lookaheadDays int
	now           func() time.Time
}

func NewDashboardService(
	dashboardRepo repositories.DashboardRepositoryInterface,
	logger *zap.Logger,
	lookaheadDays int,
) *DashboardService {
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		logger:        logger,
		lookaheadDays: lookaheadDays,
		now:           time.Now,
	}
}

func (s *DashboardService) GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	today := utils.TruncateToDate(s.now())
	monthFirst, monthLast := utils.MonthBounds(today.Year(), today.Month())

	totalMachines, err := s.dashboardRepo.CountMachines(ctx)
	if err != nil {
		s.logger.Error("Ошибка при подсчете станков", zap.Error(err))
		return nil, err
	}

	pending, err := s.dashboardRepo.CountSchedulesDueBetween(ctx, today, today.AddDate(0, 0, s.lookaheadDays))
	if err != nil {
		s.logger.Error("Ошибка при подсчете предстоящих обслуживаний", zap.Error(err))
		return nil, err
	}

	completedThisMonth, err := s.dashboardRepo.CountCompletedRecordsBetween(ctx, monthFirst, monthLast)
	if err != nil {
		s.logger.Error("Ошибка при подсчете завершенных работ за месяц", zap.Error(err))
		return nil, err
	}

	overdue, err := s.dashboardRepo.CountSchedulesDueBefore(ctx, today)
	if err != nil {
		s.logger.Error("Ошибка при подсчете просроченных обслуживаний", zap.Error(err))
		return nil, err
	}

	return &dto.DashboardStatsDTO{
		TotalMachines:      totalMachines,
		PendingMaintenance: pending,
		CompletedThisMonth: completedThisMonth,
		Overdue:            overdue,
	}, nil
}

// GetCalendar возвращает по датам месяца количество запланированных
// обслуживаний. Даты без обслуживаний в ответ не попадают.
func (s *DashboardService) GetCalendar(ctx context.Context, year int, month time.Month) ([]dto.CalendarDayDTO, error) {
	if month < time.January || month > time.December {
		return nil, apperrors.NewInvalidInputError("недопустимый месяц: %d", month)
	}
	if year < 2000 || year > 2100 {
		return nil, apperrors.NewInvalidInputError("недопустимый год: %d", year)
	}

	first, last := utils.MonthBounds(year, month)
	buckets, err := s.dashboardRepo.GetCalendarBuckets(ctx, first, last)
	if err != nil {
		s.logger.Error("Ошибка при построении календаря обслуживаний", zap.Error(err))
		return nil, err
	}

	today := utils.TruncateToDate(s.now())
	days := make([]dto.CalendarDayDTO, 0, len(buckets))
	for _, b := range buckets {
		status := constants.ScheduleStatePending
		if utils.TruncateToDate(b.Date).Before(today) {
			status = constants.ScheduleStateOverdue
		}
		days = append(days, dto.CalendarDayDTO{
			Date:             utils.FormatDate(b.Date),
			MaintenanceCount: b.Count,
			Status:           status,
		})
	}
	return days, nil
}
