package entities

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// MachineHistory - append-only запись аудита по станку.
// Одна строка - одно измененное поле; строки одной операции
// объединяются общим TxID. Записи никогда не обновляются и не удаляются.
type MachineHistory struct {
	ID          uint64         `json:"id"`
	MachineID   uint64         `json:"machine_id"`
	UserID      uint64         `json:"user_id"`
	TxID        *uuid.UUID     `json:"tx_id"`
	ChangeType  string         `json:"change_type"`
	Field       sql.NullString `json:"field"`
	OldValue    sql.NullString `json:"old_value"`
	NewValue    sql.NullString `json:"new_value"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}
