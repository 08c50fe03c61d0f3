package entities

import (
	"time"

	"maintenance-system/pkg/types"
)

// MaintenanceSchedule - повторяющийся план обслуживания одного станка.
// NextMaintenanceDate всегда равна StartDate + k*IntervalDays (k >= 0)
// и пересчитывается только движком, руками не правится.
type MaintenanceSchedule struct {
	ID                  uint64    `json:"id"`
	Code                string    `json:"code"`
	MachineID           uint64    `json:"machine_id"`
	MaintenanceType     string    `json:"maintenance_type"`
	IntervalDays        int       `json:"interval_days"`
	StartDate           time.Time `json:"start_date"`
	NextMaintenanceDate time.Time `json:"next_maintenance_date"`
	Priority            string    `json:"priority"`
	Checklist           []string  `json:"checklist"`
	RequiredParts       []string  `json:"required_parts"`
	RequiredTools       []string  `json:"required_tools"`
	EstimatedMinutes    *int      `json:"estimated_minutes"`
	IsActive            bool      `json:"is_active"`

	types.BaseEntity
}
