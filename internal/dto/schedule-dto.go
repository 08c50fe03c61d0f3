package dto

type ScheduleDTO struct {
	ID                  uint64   `json:"id"`
	Code                string   `json:"code"`
	MachineID           uint64   `json:"machine_id"`
	MaintenanceType     string   `json:"maintenance_type"`
	IntervalDays        int      `json:"interval_days"`
	StartDate           string   `json:"start_date"`
	NextMaintenanceDate string   `json:"next_maintenance_date"`
	Priority            string   `json:"priority"`
	Checklist           []string `json:"checklist"`
	RequiredParts       []string `json:"required_parts"`
	RequiredTools       []string `json:"required_tools"`
	EstimatedMinutes    *int     `json:"estimated_minutes,omitempty"`
	IsActive            bool     `json:"is_active"`
	// Классификация относительно "сегодня": overdue | pending | scheduled.
	State     string `json:"state,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CreateScheduleDTO struct {
	Code             string   `json:"code" validate:"omitempty,min=2,max=64"`
	MachineID        uint64   `json:"machine_id" validate:"required"`
	MaintenanceType  string   `json:"maintenance_type" validate:"required,min=1,max=128"`
	IntervalDays     int      `json:"interval_days" validate:"required,min=1"`
	StartDate        string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	Priority         string   `json:"priority" validate:"omitempty,priority_code"`
	Checklist        []string `json:"checklist"`
	RequiredParts    []string `json:"required_parts"`
	RequiredTools    []string `json:"required_tools"`
	EstimatedMinutes *int     `json:"estimated_minutes" validate:"omitempty,min=1"`
}

// UpdateScheduleDTO - частичное обновление графика.
// next_maintenance_date здесь отсутствует намеренно: дата пересчитывается
// движком и руками не выставляется. MachineID и Code неизменяемы.
type UpdateScheduleDTO struct {
	MaintenanceType  *string  `json:"maintenance_type" validate:"omitempty,min=1,max=128"`
	IntervalDays     *int     `json:"interval_days" validate:"omitempty,min=1"`
	StartDate        *string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Priority         *string  `json:"priority" validate:"omitempty,priority_code"`
	Checklist        []string `json:"checklist"`
	RequiredParts    []string `json:"required_parts"`
	RequiredTools    []string `json:"required_tools"`
	EstimatedMinutes *int     `json:"estimated_minutes" validate:"omitempty,min=1"`
	IsActive         *bool    `json:"is_active"`
}

func (d UpdateScheduleDTO) IsZero() bool {
	return d.MaintenanceType == nil && d.IntervalDays == nil && d.StartDate == nil &&
		d.Priority == nil && d.Checklist == nil && d.RequiredParts == nil &&
		d.RequiredTools == nil && d.EstimatedMinutes == nil && d.IsActive == nil
}

type ScheduleUpdateResultDTO struct {
	Schedule      ScheduleDTO `json:"schedule"`
	ChangedFields []string    `json:"changed_fields"`
}
