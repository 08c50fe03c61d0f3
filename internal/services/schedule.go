package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

// Границы горизонта для списка предстоящих обслуживаний (в днях).
const (
	MinUpcomingHorizonDays = 1
	MaxUpcomingHorizonDays = 365
)

type ScheduleServiceInterface interface {
	GetSchedules(ctx context.Context, limit, offset uint64, machineID uint64) ([]dto.ScheduleDTO, uint64, error)
	FindSchedule(ctx context.Context, id uint64) (*dto.ScheduleDTO, error)
	CreateSchedule(ctx context.Context, payload dto.CreateScheduleDTO) (*dto.ScheduleDTO, error)
	UpdateSchedule(ctx context.Context, id uint64, payload dto.UpdateScheduleDTO) (*dto.ScheduleUpdateResultDTO, error)
	ListUpcoming(ctx context.Context, horizonDays int) ([]dto.ScheduleDTO, error)
	ListOverdue(ctx context.Context) ([]dto.ScheduleDTO, error)
}

type ScheduleService struct {
	scheduleRepo  repositories.ScheduleRepositoryInterface
	machineRepo   repositories.MachineRepositoryInterface
	txManager     repositories.TxManagerInterface
	logger        *zap.Logger
	lookaheadDays int
	now           func() time.Time
}

func NewScheduleService(
	scheduleRepo repositories.ScheduleRepositoryInterface,
	machineRepo repositories.MachineRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
	lookaheadDays int,
) *ScheduleService {
	return &ScheduleService{
		scheduleRepo:  scheduleRepo,
		machineRepo:   machineRepo,
		txManager:     txManager,
		logger:        logger,
		lookaheadDays: lookaheadDays,
		now:           time.Now,
	}
}

// classifySchedule относит график к одной из трех корзин относительно
// сегодняшней даты: просрочен, скоро к исполнению, запланирован.
func classifySchedule(s *entities.MaintenanceSchedule, today time.Time, lookaheadDays int) string {
	due := utils.TruncateToDate(s.NextMaintenanceDate)
	switch {
	case due.Before(today):
		return constants.ScheduleStateOverdue
	case !due.After(today.AddDate(0, 0, lookaheadDays)):
		return constants.ScheduleStatePending
	default:
		return constants.ScheduleStateScheduled
	}
}

// nextDueOnOrAfter возвращает наименьшую дату вида start + k*interval
// (k >= 0), не раньше указанной. Инвариант кратности интервалу
// сохраняется при любом пересчете.
func nextDueOnOrAfter(start time.Time, intervalDays int, notBefore time.Time) time.Time {
	due := utils.TruncateToDate(start)
	notBefore = utils.TruncateToDate(notBefore)
	if !due.Before(notBefore) {
		return due
	}
	daysBehind := int(notBefore.Sub(due).Hours() / 24)
	k := daysBehind / intervalDays
	if daysBehind%intervalDays != 0 {
		k++
	}
	return due.AddDate(0, 0, k*intervalDays)
}

func (s *ScheduleService) scheduleToDTO(sc *entities.MaintenanceSchedule, today time.Time) dto.ScheduleDTO {
	out := dto.ScheduleDTO{
		ID:                  sc.ID,
		Code:                sc.Code,
		MachineID:           sc.MachineID,
		MaintenanceType:     sc.MaintenanceType,
		IntervalDays:        sc.IntervalDays,
		StartDate:           utils.FormatDate(sc.StartDate),
		NextMaintenanceDate: utils.FormatDate(sc.NextMaintenanceDate),
		Priority:            sc.Priority,
		Checklist:           sc.Checklist,
		RequiredParts:       sc.RequiredParts,
		RequiredTools:       sc.RequiredTools,
		EstimatedMinutes:    sc.EstimatedMinutes,
		IsActive:            sc.IsActive,
		State:               classifySchedule(sc, today, s.lookaheadDays),
	}
	if sc.CreatedAt != nil {
		out.CreatedAt = sc.CreatedAt.Format(time.RFC3339)
	}
	if sc.UpdatedAt != nil {
		out.UpdatedAt = sc.UpdatedAt.Format(time.RFC3339)
	}
	return out
}

func (s *ScheduleService) GetSchedules(ctx context.Context, limit, offset uint64, machineID uint64) ([]dto.ScheduleDTO, uint64, error) {
	schedules, total, err := s.scheduleRepo.GetSchedules(ctx, limit, offset, machineID)
	if err != nil {
		s.logger.Error("Ошибка при получении графиков обслуживания", zap.Error(err))
		return nil, 0, err
	}

	today := utils.TruncateToDate(s.now())
	dtos := make([]dto.ScheduleDTO, 0, len(schedules))
	for i := range schedules {
		dtos = append(dtos, s.scheduleToDTO(&schedules[i], today))
	}
	return dtos, total, nil
}

func (s *ScheduleService) FindSchedule(ctx context.Context, id uint64) (*dto.ScheduleDTO, error) {
	schedule, err := s.scheduleRepo.FindSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	out := s.scheduleToDTO(schedule, utils.TruncateToDate(s.now()))
	return &out, nil
}

// CreateSchedule создает график. Первая плановая дата совпадает с датой
// старта: новый график сразу встает в календарь без сдвига на интервал.
func (s *ScheduleService) CreateSchedule(ctx context.Context, payload dto.CreateScheduleDTO) (*dto.ScheduleDTO, error) {
	if _, err := s.machineRepo.FindMachine(ctx, payload.MachineID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("станок с id=%d не найден", payload.MachineID)
		}
		return nil, err
	}

	startDate, err := utils.ParseDate(payload.StartDate)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("неверный формат даты старта: %s", payload.StartDate)
	}

	schedule := entities.MaintenanceSchedule{
		Code:                payload.Code,
		MachineID:           payload.MachineID,
		MaintenanceType:     payload.MaintenanceType,
		IntervalDays:        payload.IntervalDays,
		StartDate:           startDate,
		NextMaintenanceDate: startDate,
		Priority:            payload.Priority,
		Checklist:           payload.Checklist,
		RequiredParts:       payload.RequiredParts,
		RequiredTools:       payload.RequiredTools,
		EstimatedMinutes:    payload.EstimatedMinutes,
		IsActive:            true,
	}
	if schedule.Code == "" {
		schedule.Code = generateEntityCode("SCH")
	}
	if schedule.Priority == "" {
		schedule.Priority = constants.PriorityMedium
	}

	created, err := s.scheduleRepo.CreateSchedule(ctx, schedule)
	if err != nil {
		s.logger.Error("Ошибка при создании графика обслуживания", zap.Error(err))
		return nil, err
	}

	s.logger.Info("График обслуживания создан",
		zap.Uint64("id", created.ID),
		zap.Uint64("machineId", created.MachineID),
		zap.Int("intervalDays", created.IntervalDays))
	out := s.scheduleToDTO(created, utils.TruncateToDate(s.now()))
	return &out, nil
}

// UpdateSchedule - обновление через guard. Смена интервала или даты
// старта пересчитывает ближайшую плановую дату на наименьшую точку
// сетки start + k*interval, не ушедшую в прошлое.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, id uint64, payload dto.UpdateScheduleDTO) (*dto.ScheduleUpdateResultDTO, error) {
	today := utils.TruncateToDate(s.now())

	if payload.IsZero() {
		current, err := s.scheduleRepo.FindSchedule(ctx, id)
		if err != nil {
			return nil, err
		}
		return &dto.ScheduleUpdateResultDTO{
			Schedule:      s.scheduleToDTO(current, today),
			ChangedFields: []string{},
		}, nil
	}

	var result dto.ScheduleUpdateResultDTO
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.scheduleRepo.FindScheduleInTx(ctx, tx, id)
		if err != nil {
			return err
		}

		merged, diff := utils.MergeSchedules(*current, payload)
		if len(diff) == 0 {
			result = dto.ScheduleUpdateResultDTO{
				Schedule:      s.scheduleToDTO(current, today),
				ChangedFields: []string{},
			}
			return nil
		}

		gridChanged := false
		for _, change := range diff {
			if change.Field == "interval_days" || change.Field == "start_date" {
				gridChanged = true
				break
			}
		}
		if gridChanged {
			recomputed := nextDueOnOrAfter(merged.StartDate, merged.IntervalDays, today)
			if !recomputed.Equal(utils.TruncateToDate(merged.NextMaintenanceDate)) {
				diff = append(diff, utils.FieldChange{
					Field: "next_maintenance_date",
					Old:   utils.FormatDate(merged.NextMaintenanceDate),
					New:   utils.FormatDate(recomputed),
				})
			}
			merged.NextMaintenanceDate = recomputed
		}

		changedFields := utils.ChangedFieldNames(diff)
		if err := s.scheduleRepo.UpdateScheduleInTx(ctx, tx, merged, changedFields); err != nil {
			return err
		}

		result = dto.ScheduleUpdateResultDTO{
			Schedule:      s.scheduleToDTO(&merged, today),
			ChangedFields: changedFields,
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении графика обслуживания", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	if len(result.ChangedFields) > 0 {
		s.logger.Info("График обслуживания обновлен",
			zap.Uint64("id", id),
			zap.Strings("fields", result.ChangedFields))
	}
	return &result, nil
}

// ListUpcoming возвращает активные графики с плановой датой в окне
// [сегодня; сегодня + horizonDays]. Горизонт зажимается в допустимые
// границы; нулевое значение означает горизонт по умолчанию.
func (s *ScheduleService) ListUpcoming(ctx context.Context, horizonDays int) ([]dto.ScheduleDTO, error) {
	if horizonDays == 0 {
		horizonDays = s.lookaheadDays
	}
	if horizonDays < MinUpcomingHorizonDays {
		horizonDays = MinUpcomingHorizonDays
	}
	if horizonDays > MaxUpcomingHorizonDays {
		horizonDays = MaxUpcomingHorizonDays
	}

	today := utils.TruncateToDate(s.now())
	schedules, err := s.scheduleRepo.GetActiveDueBetween(ctx, today, today.AddDate(0, 0, horizonDays))
	if err != nil {
		s.logger.Error("Ошибка при получении предстоящих обслуживаний", zap.Error(err))
		return nil, err
	}

	dtos := make([]dto.ScheduleDTO, 0, len(schedules))
	for i := range schedules {
		dtos = append(dtos, s.scheduleToDTO(&schedules[i], today))
	}
	return dtos, nil
}

// ListOverdue возвращает активные графики с плановой датой строго
// раньше сегодняшней.
func (s *ScheduleService) ListOverdue(ctx context.Context) ([]dto.ScheduleDTO, error) {
	today := utils.TruncateToDate(s.now())
	schedules, err := s.scheduleRepo.GetActiveDueBefore(ctx, today)
	if err != nil {
		s.logger.Error("Ошибка при получении просроченных обслуживаний", zap.Error(err))
		return nil, err
	}

	dtos := make([]dto.ScheduleDTO, 0, len(schedules))
	for i := range schedules {
		dtos = append(dtos, s.scheduleToDTO(&schedules[i], today))
	}
	return dtos, nil
}
