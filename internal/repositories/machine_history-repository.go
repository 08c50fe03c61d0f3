package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"maintenance-system/internal/entities"
)

type MachineHistoryRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.MachineHistory) error
	FindByMachineID(ctx context.Context, machineID uint64, limit, offset uint64) ([]entities.MachineHistory, error)
}

type MachineHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewMachineHistoryRepository(storage *pgxpool.Pool) MachineHistoryRepositoryInterface {
	return &MachineHistoryRepository{storage: storage}
}

// CreateInTx пишет строку истории в той же транзакции, что и само
// изменение станка. История append-only: UPDATE/DELETE по ней нет нигде.
func (r *MachineHistoryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.MachineHistory) error {
	query := `
		INSERT INTO machine_history (machine_id, user_id, tx_id, change_type, field, old_value, new_value, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.Exec(ctx, query,
		history.MachineID, history.UserID, history.TxID, history.ChangeType,
		history.Field, history.OldValue, history.NewValue, history.Description)
	return err
}

func (r *MachineHistoryRepository) FindByMachineID(ctx context.Context, machineID uint64, limit, offset uint64) ([]entities.MachineHistory, error) {
	query := `
		SELECT id, machine_id, user_id, tx_id, change_type, field, old_value, new_value, description, created_at
		FROM machine_history
		WHERE machine_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.storage.Query(ctx, query, machineID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []entities.MachineHistory
	for rows.Next() {
		var h entities.MachineHistory
		if err := rows.Scan(
			&h.ID, &h.MachineID, &h.UserID, &h.TxID, &h.ChangeType,
			&h.Field, &h.OldValue, &h.NewValue, &h.Description, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
