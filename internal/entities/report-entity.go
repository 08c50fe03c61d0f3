package entities

import "time"

// ReportFilter - фильтры для отчета по обслуживанию.
type ReportFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	MachineIDs []uint64
	Statuses   []string
	Page       int
	PerPage    int
}

// ReportItem - одна строка отчета: запись обслуживания вместе с данными станка.
type ReportItem struct {
	RecordID        uint64
	RecordCode      string
	MachineCode     string
	MachineName     string
	Location        string
	MaintenanceDate time.Time
	MaintenanceType string
	TechnicianID    uint64
	Status          string
	Cost            *float64
	ActualMinutes   *int
	CompletedAt     *time.Time
}
