package dto

import "github.com/aarondl/null/v8"

type RecordDTO struct {
	ID              uint64   `json:"id"`
	Code            string   `json:"code"`
	MachineID       uint64   `json:"machine_id"`
	ScheduleID      *uint64  `json:"schedule_id,omitempty"`
	MaintenanceDate string   `json:"maintenance_date"`
	MaintenanceType string   `json:"maintenance_type"`
	TechnicianID    uint64   `json:"technician_id"`
	Description     string   `json:"description"`
	PartsUsed       []string `json:"parts_used"`
	WorkImages      []string `json:"work_images"`
	Cost            *float64 `json:"cost,omitempty"`
	ActualMinutes   *int     `json:"actual_minutes,omitempty"`
	Status          string   `json:"status"`
	Notes           *string  `json:"notes,omitempty"`
	CompletedAt     string   `json:"completed_at,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

type CreateRecordDTO struct {
	Code            string   `json:"code" validate:"omitempty,min=2,max=64"`
	MachineID       uint64   `json:"machine_id" validate:"required"`
	ScheduleID      *uint64  `json:"schedule_id"`
	MaintenanceDate string   `json:"maintenance_date" validate:"required,datetime=2006-01-02"`
	MaintenanceType string   `json:"maintenance_type" validate:"required,min=1,max=128"`
	TechnicianID    uint64   `json:"technician_id" validate:"required"`
	Description     string   `json:"description" validate:"required"`
	PartsUsed       []string `json:"parts_used"`
	WorkImages      []string `json:"work_images"`
	Cost            *float64 `json:"cost" validate:"omitempty,gte=0"`
	ActualMinutes   *int     `json:"actual_minutes" validate:"omitempty,min=1"`
	Notes           *string  `json:"notes"`
}

// UpdateRecordDTO - частичное обновление. Статус меняется только через
// именованные переходы, MachineID/ScheduleID/TechnicianID неизменяемы.
type UpdateRecordDTO struct {
	MaintenanceDate *string     `json:"maintenance_date" validate:"omitempty,datetime=2006-01-02"`
	MaintenanceType *string     `json:"maintenance_type" validate:"omitempty,min=1,max=128"`
	Description     *string     `json:"description" validate:"omitempty,min=1"`
	PartsUsed       []string    `json:"parts_used"`
	WorkImages      []string    `json:"work_images"`
	Cost            *float64    `json:"cost" validate:"omitempty,gte=0"`
	ActualMinutes   *int        `json:"actual_minutes" validate:"omitempty,min=1"`
	Notes           null.String `json:"notes" validate:"omitempty"`
}

func (d UpdateRecordDTO) IsZero() bool {
	return d.MaintenanceDate == nil && d.MaintenanceType == nil && d.Description == nil &&
		d.PartsUsed == nil && d.WorkImages == nil && d.Cost == nil &&
		d.ActualMinutes == nil && !d.Notes.Valid
}

type RecordUpdateResultDTO struct {
	Record        RecordDTO `json:"record"`
	ChangedFields []string  `json:"changed_fields"`
}

// SetStatusDTO - прямое выставление статуса. Проверяется той же таблицей
// переходов, что и именованные операции, обход не допускается.
type SetStatusDTO struct {
	Status string `json:"status" validate:"required,record_status"`
}

// TransitionDTO - метаданные перехода, возвращаются вызывающему,
// а не теряются: это аудит-поверхность записи работ. ActedBy - кто
// выполнил переход; TechnicianID - исполнитель, закрепленный за записью.
type TransitionDTO struct {
	Record         RecordDTO `json:"record"`
	Action         string    `json:"action"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	TechnicianID   uint64    `json:"technician_id"`
	ActedBy        uint64    `json:"acted_by"`
	TransitionedAt string    `json:"transitioned_at"`
}
