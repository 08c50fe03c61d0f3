package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

type MachineServiceInterface interface {
	GetMachines(ctx context.Context, limit, offset uint64, search string) ([]dto.MachineDTO, uint64, error)
	FindMachine(ctx context.Context, id uint64) (*dto.MachineDTO, error)
	FindMachineByCode(ctx context.Context, code string) (*dto.MachineDTO, error)
	CreateMachine(ctx context.Context, payload dto.CreateMachineDTO) (*dto.MachineDTO, error)
	UpdateMachine(ctx context.Context, id uint64, payload dto.UpdateMachineDTO) (*dto.MachineUpdateResultDTO, error)
	DeleteMachine(ctx context.Context, id uint64) error
}

type MachineService struct {
	machineRepo repositories.MachineRepositoryInterface
	historyRepo repositories.MachineHistoryRepositoryInterface
	cacheRepo   repositories.CacheRepositoryInterface
	txManager   repositories.TxManagerInterface
	logger      *zap.Logger
	cacheTTL    time.Duration
}

func NewMachineService(
	machineRepo repositories.MachineRepositoryInterface,
	historyRepo repositories.MachineHistoryRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	txManager repositories.TxManagerInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) *MachineService {
	return &MachineService{
		machineRepo: machineRepo,
		historyRepo: historyRepo,
		cacheRepo:   cacheRepo,
		txManager:   txManager,
		logger:      logger,
		cacheTTL:    cacheTTL,
	}
}

func machineToDTO(m *entities.Machine) dto.MachineDTO {
	out := dto.MachineDTO{
		ID:           m.ID,
		Code:         m.Code,
		Name:         m.Name,
		Type:         m.Type,
		Manufacturer: m.Manufacturer,
		Model:        m.Model,
		SerialNumber: m.SerialNumber,
		Location:     m.Location,
		Department:   m.Department,
		Status:       m.Status,
		Notes:        m.Notes,
	}
	if m.InstallationDate != nil {
		out.InstallationDate = utils.FormatDate(*m.InstallationDate)
	}
	if m.CreatedAt != nil {
		out.CreatedAt = m.CreatedAt.Format(time.RFC3339)
	}
	if m.UpdatedAt != nil {
		out.UpdatedAt = m.UpdatedAt.Format(time.RFC3339)
	}
	return out
}

func (s *MachineService) GetMachines(ctx context.Context, limit, offset uint64, search string) ([]dto.MachineDTO, uint64, error) {
	machines, total, err := s.machineRepo.GetMachines(ctx, limit, offset, search)
	if err != nil {
		s.logger.Error("Ошибка при получении списка станков", zap.Error(err))
		return nil, 0, err
	}

	dtos := make([]dto.MachineDTO, 0, len(machines))
	for i := range machines {
		dtos = append(dtos, machineToDTO(&machines[i]))
	}
	return dtos, total, nil
}

func (s *MachineService) FindMachine(ctx context.Context, id uint64) (*dto.MachineDTO, error) {
	machine, err := s.machineRepo.FindMachine(ctx, id)
	if err != nil {
		return nil, err
	}
	out := machineToDTO(machine)
	return &out, nil
}

// FindMachineByCode сперва смотрит в кеш; промах или ошибка кеша
// прозрачно уходят в БД. Ошибки кеша не фатальны.
func (s *MachineService) FindMachineByCode(ctx context.Context, code string) (*dto.MachineDTO, error) {
	cacheKey := fmt.Sprintf(constants.CacheKeyMachineByCode, code)

	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil && cached != "" {
		var out dto.MachineDTO
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return &out, nil
		}
		s.logger.Warn("Невалидный JSON в кеше станка, читаем из БД", zap.String("key", cacheKey))
	}

	machine, err := s.machineRepo.FindMachineByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	out := machineToDTO(machine)

	if payload, err := json.Marshal(out); err == nil {
		if err := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheTTL); err != nil {
			s.logger.Warn("Не удалось записать станок в кеш", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return &out, nil
}

func (s *MachineService) CreateMachine(ctx context.Context, payload dto.CreateMachineDTO) (*dto.MachineDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	machine := entities.Machine{
		Code:         payload.Code,
		Name:         payload.Name,
		Type:         payload.Type,
		Manufacturer: payload.Manufacturer,
		Model:        payload.Model,
		SerialNumber: payload.SerialNumber,
		Location:     payload.Location,
		Department:   payload.Department,
		Status:       payload.Status,
		Notes:        payload.Notes,
	}
	if machine.Code == "" {
		machine.Code = generateEntityCode("MCH")
	}
	if machine.Status == "" {
		machine.Status = constants.MachineStatusOperational
	}
	if payload.InstallationDate != nil {
		installedAt, err := utils.ParseDate(*payload.InstallationDate)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("неверный формат даты установки: %s", *payload.InstallationDate)
		}
		machine.InstallationDate = &installedAt
	}

	created, err := s.machineRepo.CreateMachine(ctx, machine)
	if err != nil {
		s.logger.Error("Ошибка при создании станка", zap.Error(err))
		return nil, err
	}

	txID := uuid.New()
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return s.historyRepo.CreateInTx(ctx, tx, &entities.MachineHistory{
			MachineID:   created.ID,
			UserID:      userID,
			TxID:        &txID,
			ChangeType:  constants.HistoryTypeCreated,
			Description: fmt.Sprintf("Станок %s зарегистрирован", created.Code),
		})
	})
	if err != nil {
		// Станок уже создан, историю не откатываем вместе с ним.
		s.logger.Error("Станок создан, но запись истории не добавлена",
			zap.Uint64("machineId", created.ID), zap.Error(err))
	}

	s.logger.Info("Станок успешно создан", zap.Uint64("id", created.ID), zap.String("code", created.Code))
	out := machineToDTO(created)
	return &out, nil
}

// auditedMachineFields - поля станка, изменения которых фиксируются в
// machine_history. Правки остальных полей сохраняются без строк истории.
var auditedMachineFields = map[string]struct{}{
	"name":       {},
	"type":       {},
	"location":   {},
	"department": {},
	"status":     {},
}

// historyTypeForField определяет тип записи истории по имени поля:
// перемещение и смена статуса выделены в собственные типы.
func historyTypeForField(field string) string {
	switch field {
	case "location":
		return constants.HistoryTypeLocationChanged
	case "status":
		return constants.HistoryTypeStatusChanged
	default:
		return constants.HistoryTypeUpdated
	}
}

func historyDescriptionForChange(machine *entities.Machine, change utils.FieldChange) string {
	switch change.Field {
	case "location":
		return fmt.Sprintf("Станок %s перемещен: %s -> %s", machine.Code, change.Old, change.New)
	case "status":
		return fmt.Sprintf("Статус станка %s изменен: %s -> %s", machine.Code, change.Old, change.New)
	default:
		return fmt.Sprintf("Поле %s станка %s изменено", change.Field, machine.Code)
	}
}

// UpdateMachine - обновление через guard: читаем текущее состояние под
// блокировкой, сравниваем по полям и пишем только реально изменившееся.
// Нет изменений - нет ни UPDATE, ни строк истории.
func (s *MachineService) UpdateMachine(ctx context.Context, id uint64, payload dto.UpdateMachineDTO) (*dto.MachineUpdateResultDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	if payload.IsZero() {
		current, err := s.machineRepo.FindMachine(ctx, id)
		if err != nil {
			return nil, err
		}
		return &dto.MachineUpdateResultDTO{
			Machine:       machineToDTO(current),
			ChangedFields: []string{},
		}, nil
	}

	var result dto.MachineUpdateResultDTO
	var staleCode string

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.machineRepo.FindMachineInTx(ctx, tx, id)
		if err != nil {
			return err
		}

		merged, diff := utils.MergeMachines(*current, payload)
		if len(diff) == 0 {
			result = dto.MachineUpdateResultDTO{
				Machine:       machineToDTO(current),
				ChangedFields: []string{},
			}
			return nil
		}

		changedFields := utils.ChangedFieldNames(diff)
		if err := s.machineRepo.UpdateMachineInTx(ctx, tx, merged, changedFields); err != nil {
			return err
		}

		txID := uuid.New()
		for _, change := range diff {
			if _, tracked := auditedMachineFields[change.Field]; !tracked {
				continue
			}
			entry := entities.MachineHistory{
				MachineID:   id,
				UserID:      userID,
				TxID:        &txID,
				ChangeType:  historyTypeForField(change.Field),
				Field:       sql.NullString{String: change.Field, Valid: true},
				OldValue:    utils.StringToNullString(change.Old),
				NewValue:    utils.StringToNullString(change.New),
				Description: historyDescriptionForChange(&merged, change),
			}
			if err := s.historyRepo.CreateInTx(ctx, tx, &entry); err != nil {
				return err
			}
		}

		staleCode = merged.Code
		result = dto.MachineUpdateResultDTO{
			Machine:       machineToDTO(&merged),
			ChangedFields: changedFields,
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Ошибка при обновлении станка", zap.Uint64("id", id), zap.Error(err))
		return nil, err
	}

	if staleCode != "" {
		s.invalidateMachineCache(ctx, staleCode)
		s.logger.Info("Станок обновлен",
			zap.Uint64("id", id),
			zap.String("fields", strings.Join(result.ChangedFields, ",")))
	}
	return &result, nil
}

func (s *MachineService) DeleteMachine(ctx context.Context, id uint64) error {
	machine, err := s.machineRepo.FindMachine(ctx, id)
	if err != nil {
		return err
	}
	if err := s.machineRepo.DeleteMachine(ctx, id); err != nil {
		s.logger.Error("Ошибка при удалении станка", zap.Uint64("id", id), zap.Error(err))
		return err
	}
	s.invalidateMachineCache(ctx, machine.Code)
	s.logger.Info("Станок удален", zap.Uint64("id", id), zap.String("code", machine.Code))
	return nil
}

func (s *MachineService) invalidateMachineCache(ctx context.Context, code string) {
	cacheKey := fmt.Sprintf(constants.CacheKeyMachineByCode, code)
	if err := s.cacheRepo.Del(ctx, cacheKey); err != nil {
		s.logger.Warn("Не удалось инвалидировать кеш станка", zap.String("key", cacheKey), zap.Error(err))
	}
}

// generateEntityCode выдает код вида MCH-1a2b3c4d, когда клиент
// не прислал собственный бизнес-код.
func generateEntityCode(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.Split(uuid.NewString(), "-")[0])
}
