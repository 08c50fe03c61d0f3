// pkg/constants/constants.go
package constants

//============== СТАТУСЫ СТАНКОВ ==============

// Коды эксплуатационных статусов станка. Используются в бизнес-логике для надежности.
const (
	MachineStatusOperational = "operational"
	MachineStatusMaintenance = "maintenance"
	MachineStatusDown        = "down"
)

var MachineStatuses = []string{
	MachineStatusOperational,
	MachineStatusMaintenance,
	MachineStatusDown,
}

func IsValidMachineStatus(code string) bool {
	for _, s := range MachineStatuses {
		if s == code {
			return true
		}
	}
	return false
}

//============== ПРИОРИТЕТЫ ГРАФИКОВ ==============

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

var SchedulePriorities = []string{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityCritical,
}

func IsValidPriority(code string) bool {
	for _, p := range SchedulePriorities {
		if p == code {
			return true
		}
	}
	return false
}

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Карточка станка по бизнес-коду.
	// Формат: machine:code:<code> -> JSON MachineDTO
	CacheKeyMachineByCode = "machine:code:%s"
)
