package dto

// DashboardStatsDTO - четыре точечных счетчика, каждый считается
// независимо по текущему состоянию хранилища. Кеша нет намеренно.
type DashboardStatsDTO struct {
	TotalMachines      int64 `json:"total_machines"`
	PendingMaintenance int64 `json:"pending_maintenance"`
	CompletedThisMonth int64 `json:"completed_this_month"`
	Overdue            int64 `json:"overdue"`
}

// CalendarDayDTO - количество обслуживаний на дату месяца.
// Status: overdue, если дата уже прошла, иначе pending.
type CalendarDayDTO struct {
	Date             string `json:"date"`
	MaintenanceCount int64  `json:"maintenance_count"`
	Status           string `json:"status"`
}
