package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	"maintenance-system/pkg/utils"
)

type MachineHistoryServiceInterface interface {
	GetMachineHistory(ctx context.Context, machineID uint64, limit, offset uint64) ([]dto.MachineHistoryEntryDTO, error)
}

type MachineHistoryService struct {
	historyRepo repositories.MachineHistoryRepositoryInterface
	machineRepo repositories.MachineRepositoryInterface
	logger      *zap.Logger
}

func NewMachineHistoryService(
	historyRepo repositories.MachineHistoryRepositoryInterface,
	machineRepo repositories.MachineRepositoryInterface,
	logger *zap.Logger,
) *MachineHistoryService {
	return &MachineHistoryService{
		historyRepo: historyRepo,
		machineRepo: machineRepo,
		logger:      logger,
	}
}

// GetMachineHistory возвращает историю станка, собранную в операции:
// строки с общим TxID складываются в одну запись с картой изменений
// по имени поля. Порядок - хронологический.
func (s *MachineHistoryService) GetMachineHistory(ctx context.Context, machineID uint64, limit, offset uint64) ([]dto.MachineHistoryEntryDTO, error) {
	if _, err := s.machineRepo.FindMachine(ctx, machineID); err != nil {
		return nil, err
	}

	rows, err := s.historyRepo.FindByMachineID(ctx, machineID, limit, offset)
	if err != nil {
		s.logger.Error("Ошибка при получении истории станка", zap.Uint64("machineId", machineID), zap.Error(err))
		return nil, err
	}

	return groupHistoryRows(rows), nil
}

// groupHistoryRows сворачивает подряд идущие строки одной транзакции в
// одну операцию. Строки без TxID всегда отдельные операции.
func groupHistoryRows(rows []entities.MachineHistory) []dto.MachineHistoryEntryDTO {
	entries := make([]dto.MachineHistoryEntryDTO, 0, len(rows))

	var group []entities.MachineHistory
	flush := func() {
		if len(group) == 0 {
			return
		}
		entries = append(entries, buildHistoryEntry(group))
		group = nil
	}

	for i := range rows {
		row := rows[i]
		if len(group) > 0 {
			prev := group[len(group)-1]
			sameTx := row.TxID != nil && prev.TxID != nil && *row.TxID == *prev.TxID
			if !sameTx {
				flush()
			}
		}
		group = append(group, row)
		if row.TxID == nil {
			flush()
		}
	}
	flush()

	return entries
}

func buildHistoryEntry(group []entities.MachineHistory) dto.MachineHistoryEntryDTO {
	first := group[0]
	entry := dto.MachineHistoryEntryDTO{
		MachineID:   first.MachineID,
		ChangeType:  first.ChangeType,
		Description: first.Description,
		Changes:     make(map[string]dto.FieldChangeDTO),
		UserID:      first.UserID,
		CreatedAt:   first.CreatedAt.Format(time.RFC3339),
	}

	mixed := false
	for _, row := range group {
		if row.ChangeType != first.ChangeType {
			mixed = true
		}
		if row.Field.Valid {
			entry.Changes[row.Field.String] = dto.FieldChangeDTO{
				Old: utils.NullStringToStrPtr(row.OldValue),
				New: utils.NullStringToStrPtr(row.NewValue),
			}
		}
	}

	// Смешанная операция (например, перемещение вместе с правкой имени)
	// сводится к общему типу updated.
	if mixed {
		entry.ChangeType = constants.HistoryTypeUpdated
	}
	if len(group) > 1 {
		entry.Description = fmt.Sprintf("Обновлено полей: %d", len(entry.Changes))
	}
	return entry
}
