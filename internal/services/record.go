package services

import (
	"context"
	"errors"
	"fmt"
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

// recordTransition - одна разрешенная дуга жизненного цикла записи работ.
type recordTransition struct {
	from string
	to   string
}

// Таблица переходов единственная: и именованные операции, и прямое
// выставление статуса проверяются по ней. Финальные статусы дуг
// наружу не имеют.
var recordTransitions = map[string]recordTransition{
	constants.ActionStartWork:    {from: constants.RecordStatusPending, to: constants.RecordStatusInProgress},
	constants.ActionCompleteWork: {from: constants.RecordStatusInProgress, to: constants.RecordStatusCompleted},
	constants.ActionCancelWork:   {to: constants.RecordStatusCancelled},
}

// cancelableStatuses - отмена разрешена из любого нефинального статуса.
var cancelableStatuses = []string{
	constants.RecordStatusPending,
	constants.RecordStatusInProgress,
}

type RecordServiceInterface interface {
	GetRecords(ctx context.Context, limit, offset uint64, machineID uint64, status string) ([]dto.RecordDTO, uint64, error)
	FindRecord(ctx context.Context, id uint64) (*dto.RecordDTO, error)
	CreateRecord(ctx context.Context, payload dto.CreateRecordDTO) (*dto.RecordDTO, error)
	UpdateRecord(ctx context.Context, id uint64, payload dto.UpdateRecordDTO) (*dto.RecordUpdateResultDTO, error)
	StartWork(ctx context.Context, id uint64) (*dto.TransitionDTO, error)
	CompleteWork(ctx context.Context, id uint64) (*dto.TransitionDTO, error)
	CancelWork(ctx context.Context, id uint64) (*dto.TransitionDTO, error)
	SetStatus(ctx context.Context, id uint64, payload dto.SetStatusDTO) (*dto.TransitionDTO, error)
}

type RecordService struct {
	recordRepo   repositories.RecordRepositoryInterface
	scheduleRepo repositories.ScheduleRepositoryInterface
	machineRepo  repositories.MachineRepositoryInterface
	txManager    repositories.TxManagerInterface
	logger       *zap.Logger
	now          func() time.Time
}

func NewRecordService(
	recordRepo repositories.RecordRepositoryInterface,
	scheduleRepo repositories.ScheduleRepositoryInterface,
	machineRepo repositories.MachineRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
) *RecordService {
	return &RecordService{
		recordRepo:   recordRepo,
		scheduleRepo: scheduleRepo,
		machineRepo:  machineRepo,
		txManager:    txManager,
		logger:       logger,
		now:          time.Now,
	}
}

func recordToDTO(r *entities.MaintenanceRecord) dto.RecordDTO {
	out := dto.RecordDTO{
		ID:              r.ID,
		Code:            r.Code,
		MachineID:       r.MachineID,
		ScheduleID:      r.ScheduleID,
		MaintenanceDate: utils.FormatDate(r.MaintenanceDate),
		MaintenanceType: r.MaintenanceType,
		TechnicianID:    r.TechnicianID,
		Description:     r.Description,
		PartsUsed:       r.PartsUsed,
		WorkImages:      r.WorkImages,
		Cost:            r.Cost,
		ActualMinutes:   r.ActualMinutes,
		Status:          r.Status,
		Notes:           r.Notes,
	}
	if r.CompletedAt != nil {
		out.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}
	if r.CreatedAt != nil {
		out.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	if r.UpdatedAt != nil {
		out.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return out
}

func (s *RecordService) GetRecords(ctx context.Context, limit, offset uint64, machineID uint64, status string) ([]dto.RecordDTO, uint64, error) {
	if status != "" && !constants.IsValidRecordStatus(status) {
		return nil, 0, apperrors.NewInvalidInputError("неизвестный статус работ: %s", status)
	}

	records, total, err := s.recordRepo.GetRecords(ctx, limit, offset, machineID, status)
	if err != nil {
		s.logger.Error("Ошибка при получении записей работ", zap.Error(err))
		return nil, 0, err
	}

	dtos := make([]dto.RecordDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, recordToDTO(&records[i]))
	}
	return dtos, total, nil
}

func (s *RecordService) FindRecord(ctx context.Context, id uint64) (*dto.RecordDTO, error) {
	record, err := s.recordRepo.FindRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	out := recordToDTO(record)
	return &out, nil
}

// CreateRecord регистрирует новую единицу работ в статусе pending.
// Привязка к графику проверяется на принадлежность тому же станку.
func (s *RecordService) CreateRecord(ctx context.Context, payload dto.CreateRecordDTO) (*dto.RecordDTO, error) {
	if _, err := s.machineRepo.FindMachine(ctx, payload.MachineID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("станок с id=%d не найден", payload.MachineID)
		}
		return nil, err
	}
	if payload.ScheduleID != nil {
		schedule, err := s.scheduleRepo.FindSchedule(ctx, *payload.ScheduleID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewInvalidInputError("график с id=%d не найден", *payload.ScheduleID)
			}
			return nil, err
		}
		if schedule.MachineID != payload.MachineID {
			return nil, apperrors.NewInvalidInputError("график %d относится к другому станку", *payload.ScheduleID)
		}
	}

	maintenanceDate, err := utils.ParseDate(payload.MaintenanceDate)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("неверный формат даты обслуживания: %s", payload.MaintenanceDate)
	}

	record := entities.MaintenanceRecord{
		Code:            payload.Code,
		MachineID:       payload.MachineID,
		ScheduleID:      payload.ScheduleID,
		MaintenanceDate: maintenanceDate,
		MaintenanceType: payload.MaintenanceType,
		TechnicianID:    payload.TechnicianID,
		Description:     payload.Description,
		PartsUsed:       payload.PartsUsed,
		WorkImages:      payload.WorkImages,
		Cost:            payload.Cost,
		ActualMinutes:   payload.ActualMinutes,
		Status:          constants.RecordStatusPending,
		Notes:           payload.Notes,
	}
	if record.Code == "" {
		record.Code = generateEntityCode("REC")
	}

	created, err := s.recordRepo.CreateRecord(ctx, record)
	if err != nil {
		s.logger.Error("Ошибка при создании записи работ", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Запись работ создана",
		zap.Uint64("id", created.ID),
		zap.Uint64("machineId", created.MachineID))
	out := recordToDTO(created)
	return &out, nil
}

// UpdateRecord - обновление описательных полей через guard. Запись в
// финальном статусе не редактируется.
func (s *RecordService) UpdateRecord(ctx context.Context, id uint64, payload dto.UpdateRecordDTO) (*dto.RecordUpdateResultDTO, error) {
	if payload.IsZero() {
		current, err := s.recordRepo.FindRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		return &dto.RecordUpdateResultDTO{
			Record:        recordToDTO(current),
			ChangedFields: []string{},
		}, nil
	}

	var result dto.RecordUpdateResultDTO
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.recordRepo.FindRecordInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if constants.IsFinalRecordStatus(current.Status) {
			return apperrors.NewInvalidInputError("запись в статусе %s не редактируется", current.Status)
		}

		merged, diff := utils.MergeRecords(*current, payload)
		if len(diff) == 0 {
			result = dto.RecordUpdateResultDTO{
				Record:        recordToDTO(current),
				ChangedFields: []string{},
			}
			return nil
		}

		changedFields := utils.ChangedFieldNames(diff)
		if err := s.recordRepo.UpdateRecordInTx(ctx, tx, merged, changedFields); err != nil {
			return err
		}

		result = dto.RecordUpdateResultDTO{
			Record:        recordToDTO(&merged),
			ChangedFields: changedFields,
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении записи работ", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	if len(result.ChangedFields) > 0 {
		s.logger.Info("Запись работ обновлена",
			zap.Uint64("id", id),
			zap.Strings("fields", result.ChangedFields))
	}
	return &result, nil
}

// transitionAllowed проверяет действие против текущего статуса записи.
func transitionAllowed(action, currentStatus string) (string, error) {
	tr, ok := recordTransitions[action]
	if !ok {
		return "", apperrors.NewInvalidInputError("неизвестное действие: %s", action)
	}
	if action == constants.ActionCancelWork {
		for _, status := range cancelableStatuses {
			if status == currentStatus {
				return tr.to, nil
			}
		}
		return "", fmt.Errorf("%w: %s из статуса %s", apperrors.ErrInvalidTransition, action, currentStatus)
	}
	if tr.from != currentStatus {
		return "", fmt.Errorf("%w: %s из статуса %s", apperrors.ErrInvalidTransition, action, currentStatus)
	}
	return tr.to, nil
}

// actionForTarget находит именованное действие, ведущее в целевой
// статус. Прямое выставление статуса - тот же переход, обходного
// пути мимо таблицы нет.
func actionForTarget(target string) (string, error) {
	for action, tr := range recordTransitions {
		if tr.to == target {
			return action, nil
		}
	}
	return "", fmt.Errorf("%w: статус %s напрямую не выставляется", apperrors.ErrInvalidTransition, target)
}

// transition выполняет переход атомарно: чтение записи под блокировкой,
// смена статуса и, для завершения, сдвиг плановой даты графика - в
// одной транзакции. Инициатор перехода берется из контекста запроса.
func (s *RecordService) transition(ctx context.Context, id uint64, action string) (*dto.TransitionDTO, error) {
	actedBy, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	transitionedAt := s.now()
	var result dto.TransitionDTO

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		record, err := s.recordRepo.FindRecordInTx(ctx, tx, id)
		if err != nil {
			return err
		}

		newStatus, err := transitionAllowed(action, record.Status)
		if err != nil {
			return err
		}

		var completedAt *time.Time
		if newStatus == constants.RecordStatusCompleted {
			completedAt = &transitionedAt
		}
		if err := s.recordRepo.SetStatusInTx(ctx, tx, id, newStatus, completedAt); err != nil {
			return err
		}

		// Завершение плановой работы двигает график на следующий цикл.
		if newStatus == constants.RecordStatusCompleted && record.ScheduleID != nil {
			if err := s.advanceScheduleInTx(ctx, tx, *record.ScheduleID); err != nil {
				return err
			}
		}

		previous := record.Status
		record.Status = newStatus
		record.CompletedAt = completedAt
		result = dto.TransitionDTO{
			Record:         recordToDTO(record),
			Action:         action,
			PreviousStatus: previous,
			NewStatus:      newStatus,
			TechnicianID:   record.TechnicianID,
			ActedBy:        actedBy,
			TransitionedAt: transitionedAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Переход статуса записи работ отклонен или не выполнен",
			zap.Uint64("id", id), zap.String("action", action), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Переход статуса записи работ",
		zap.Uint64("id", id),
		zap.String("action", action),
		zap.String("from", result.PreviousStatus),
		zap.String("to", result.NewStatus),
		zap.Uint64("actedBy", actedBy))
	return &result, nil
}

// advanceScheduleInTx сдвигает плановую дату активного графика ровно на
// один интервал. Сетка start + k*interval при этом сохраняется.
func (s *RecordService) advanceScheduleInTx(ctx context.Context, tx pgx.Tx, scheduleID uint64) error {
	schedule, err := s.scheduleRepo.FindScheduleInTx(ctx, tx, scheduleID)
	if err != nil {
		return err
	}
	if !schedule.IsActive {
		return nil
	}
	schedule.NextMaintenanceDate = utils.TruncateToDate(schedule.NextMaintenanceDate).AddDate(0, 0, schedule.IntervalDays)
	return s.scheduleRepo.UpdateScheduleInTx(ctx, tx, *schedule, []string{"next_maintenance_date"})
}

func (s *RecordService) StartWork(ctx context.Context, id uint64) (*dto.TransitionDTO, error) {
	return s.transition(ctx, id, constants.ActionStartWork)
}

func (s *RecordService) CompleteWork(ctx context.Context, id uint64) (*dto.TransitionDTO, error) {
	return s.transition(ctx, id, constants.ActionCompleteWork)
}

func (s *RecordService) CancelWork(ctx context.Context, id uint64) (*dto.TransitionDTO, error) {
	return s.transition(ctx, id, constants.ActionCancelWork)
}

// SetStatus - выставление статуса по имени. Сводится к именованному
// действию и проходит ту же проверку таблицей переходов.
func (s *RecordService) SetStatus(ctx context.Context, id uint64, payload dto.SetStatusDTO) (*dto.TransitionDTO, error) {
	action, err := actionForTarget(payload.Status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, action)
}
