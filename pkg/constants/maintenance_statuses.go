package constants

// --- СТАТУСЫ РАБОТ ПО ОБСЛУЖИВАНИЮ (совпадает с кодами в БД) ---
const (
	RecordStatusPending    = "pending"
	RecordStatusInProgress = "in_progress"
	RecordStatusCompleted  = "completed"
	RecordStatusCancelled  = "cancelled"
)

// Финальные статусы
var FinalRecordStatuses = []string{
	RecordStatusCompleted,
	RecordStatusCancelled,
}

// Функция-проверка
func IsFinalRecordStatus(code string) bool {
	for _, s := range FinalRecordStatuses {
		if s == code {
			return true
		}
	}
	return false
}

func IsValidRecordStatus(code string) bool {
	switch code {
	case RecordStatusPending, RecordStatusInProgress, RecordStatusCompleted, RecordStatusCancelled:
		return true
	}
	return false
}

// --- ИМЕНОВАННЫЕ ДЕЙСТВИЯ ПЕРЕХОДОВ ---
const (
	ActionStartWork    = "start_work"
	ActionCompleteWork = "complete_work"
	ActionCancelWork   = "cancel_work"
)

// --- КЛАССИФИКАЦИЯ ГРАФИКОВ ОТНОСИТЕЛЬНО "СЕГОДНЯ" ---
const (
	ScheduleStateOverdue   = "overdue"
	ScheduleStatePending   = "pending"
	ScheduleStateScheduled = "scheduled"
)

// --- ТИПЫ ЗАПИСЕЙ ИСТОРИИ СТАНКА ---
const (
	HistoryTypeCreated         = "created"
	HistoryTypeUpdated         = "updated"
	HistoryTypeLocationChanged = "location_changed"
	HistoryTypeStatusChanged   = "status_changed"
)
