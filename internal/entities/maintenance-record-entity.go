package entities

import (
	"time"

	"maintenance-system/pkg/types"
)

// MaintenanceRecord - одна конкретная единица работ по обслуживанию.
// MachineID, ScheduleID и TechnicianID задаются при создании и не переназначаются.
// CompletedAt выставляется только переходом в статус completed.
type MaintenanceRecord struct {
	ID              uint64     `json:"id"`
	Code            string     `json:"code"`
	MachineID       uint64     `json:"machine_id"`
	ScheduleID      *uint64    `json:"schedule_id"`
	MaintenanceDate time.Time  `json:"maintenance_date"`
	MaintenanceType string     `json:"maintenance_type"`
	TechnicianID    uint64     `json:"technician_id"`
	Description     string     `json:"description"`
	PartsUsed       []string   `json:"parts_used"`
	WorkImages      []string   `json:"work_images"`
	Cost            *float64   `json:"cost"`
	ActualMinutes   *int       `json:"actual_minutes"`
	Status          string     `json:"status"`
	Notes           *string    `json:"notes"`
	CompletedAt     *time.Time `json:"completed_at"`

	types.BaseEntity
}
