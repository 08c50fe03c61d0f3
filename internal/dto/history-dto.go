package dto

// FieldChangeDTO - старое/новое значение одного поля.
type FieldChangeDTO struct {
	Old *string `json:"old"`
	New *string `json:"new"`
}

// MachineHistoryEntryDTO - одна операция над станком: строки истории,
// записанные в одной транзакции, собраны в карту изменений по имени поля.
type MachineHistoryEntryDTO struct {
	MachineID   uint64                    `json:"machine_id"`
	ChangeType  string                    `json:"change_type"`
	Description string                    `json:"description"`
	Changes     map[string]FieldChangeDTO `json:"changes"`
	UserID      uint64                    `json:"user_id"`
	CreatedAt   string                    `json:"created_at"`
}
