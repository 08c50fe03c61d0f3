package utils

import (
	"fmt"
	"strings"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
)

// FieldChange - одно обнаруженное изменение поля. Old/New приведены к
// строкам в том виде, в котором они попадают в историю станка.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

func strPtrToDisplay(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intPtrToDisplay(p *int) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func float64PtrToDisplay(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *p)
}

// MergeMachines сравнивает присланные поля с сохраненными строго по
// каждому полю. Сравнение типизированное и явное: поле, добавленное в
// сущность без строки здесь, молча не проскочит guard.
func MergeMachines(original entities.Machine, changes dto.UpdateMachineDTO) (entities.Machine, []FieldChange) {
	merged := original
	var diff []FieldChange

	if changes.Name != nil && *changes.Name != merged.Name {
		diff = append(diff, FieldChange{Field: "name", Old: merged.Name, New: *changes.Name})
		merged.Name = *changes.Name
	}
	if changes.Type != nil && *changes.Type != merged.Type {
		diff = append(diff, FieldChange{Field: "type", Old: merged.Type, New: *changes.Type})
		merged.Type = *changes.Type
	}
	if changes.Manufacturer.Valid && !AreStringPointersEqual(merged.Manufacturer, &changes.Manufacturer.String) {
		diff = append(diff, FieldChange{Field: "manufacturer", Old: strPtrToDisplay(merged.Manufacturer), New: changes.Manufacturer.String})
		v := changes.Manufacturer.String
		merged.Manufacturer = &v
	}
	if changes.Model.Valid && !AreStringPointersEqual(merged.Model, &changes.Model.String) {
		diff = append(diff, FieldChange{Field: "model", Old: strPtrToDisplay(merged.Model), New: changes.Model.String})
		v := changes.Model.String
		merged.Model = &v
	}
	if changes.SerialNumber.Valid && !AreStringPointersEqual(merged.SerialNumber, &changes.SerialNumber.String) {
		diff = append(diff, FieldChange{Field: "serial_number", Old: strPtrToDisplay(merged.SerialNumber), New: changes.SerialNumber.String})
		v := changes.SerialNumber.String
		merged.SerialNumber = &v
	}
	if changes.Location != nil && *changes.Location != merged.Location {
		diff = append(diff, FieldChange{Field: "location", Old: merged.Location, New: *changes.Location})
		merged.Location = *changes.Location
	}
	if changes.Department.Valid && !AreStringPointersEqual(merged.Department, &changes.Department.String) {
		diff = append(diff, FieldChange{Field: "department", Old: strPtrToDisplay(merged.Department), New: changes.Department.String})
		v := changes.Department.String
		merged.Department = &v
	}
	if changes.Status != nil && *changes.Status != merged.Status {
		diff = append(diff, FieldChange{Field: "status", Old: merged.Status, New: *changes.Status})
		merged.Status = *changes.Status
	}
	if changes.InstallationDate != nil {
		// Формат уже проверен валидатором (datetime=2006-01-02).
		newDate, err := ParseDate(*changes.InstallationDate)
		if err == nil {
			oldDisplay := ""
			if merged.InstallationDate != nil {
				oldDisplay = FormatDate(*merged.InstallationDate)
			}
			if merged.InstallationDate == nil || !merged.InstallationDate.Equal(newDate) {
				diff = append(diff, FieldChange{Field: "installation_date", Old: oldDisplay, New: FormatDate(newDate)})
				merged.InstallationDate = &newDate
			}
		}
	}
	if changes.Notes.Valid && !AreStringPointersEqual(merged.Notes, &changes.Notes.String) {
		diff = append(diff, FieldChange{Field: "notes", Old: strPtrToDisplay(merged.Notes), New: changes.Notes.String})
		v := changes.Notes.String
		merged.Notes = &v
	}

	return merged, diff
}

// MergeSchedules - то же для графика обслуживания. NextMaintenanceDate
// сюда намеренно не входит: ее пересчитывает сервис.
func MergeSchedules(original entities.MaintenanceSchedule, changes dto.UpdateScheduleDTO) (entities.MaintenanceSchedule, []FieldChange) {
	merged := original
	var diff []FieldChange

	if changes.MaintenanceType != nil && *changes.MaintenanceType != merged.MaintenanceType {
		diff = append(diff, FieldChange{Field: "maintenance_type", Old: merged.MaintenanceType, New: *changes.MaintenanceType})
		merged.MaintenanceType = *changes.MaintenanceType
	}
	if changes.IntervalDays != nil && *changes.IntervalDays != merged.IntervalDays {
		diff = append(diff, FieldChange{Field: "interval_days", Old: fmt.Sprintf("%d", merged.IntervalDays), New: fmt.Sprintf("%d", *changes.IntervalDays)})
		merged.IntervalDays = *changes.IntervalDays
	}
	if changes.StartDate != nil {
		newDate, err := ParseDate(*changes.StartDate)
		if err == nil && !merged.StartDate.Equal(newDate) {
			diff = append(diff, FieldChange{Field: "start_date", Old: FormatDate(merged.StartDate), New: FormatDate(newDate)})
			merged.StartDate = newDate
		}
	}
	if changes.Priority != nil && *changes.Priority != merged.Priority {
		diff = append(diff, FieldChange{Field: "priority", Old: merged.Priority, New: *changes.Priority})
		merged.Priority = *changes.Priority
	}
	if changes.Checklist != nil && !AreStringSlicesEqual(merged.Checklist, changes.Checklist) {
		diff = append(diff, FieldChange{Field: "checklist", Old: strings.Join(merged.Checklist, ", "), New: strings.Join(changes.Checklist, ", ")})
		merged.Checklist = changes.Checklist
	}
	if changes.RequiredParts != nil && !AreStringSlicesEqual(merged.RequiredParts, changes.RequiredParts) {
		diff = append(diff, FieldChange{Field: "required_parts", Old: strings.Join(merged.RequiredParts, ", "), New: strings.Join(changes.RequiredParts, ", ")})
		merged.RequiredParts = changes.RequiredParts
	}
	if changes.RequiredTools != nil && !AreStringSlicesEqual(merged.RequiredTools, changes.RequiredTools) {
		diff = append(diff, FieldChange{Field: "required_tools", Old: strings.Join(merged.RequiredTools, ", "), New: strings.Join(changes.RequiredTools, ", ")})
		merged.RequiredTools = changes.RequiredTools
	}
	if changes.EstimatedMinutes != nil && !AreIntPointersEqual(merged.EstimatedMinutes, changes.EstimatedMinutes) {
		diff = append(diff, FieldChange{Field: "estimated_minutes", Old: intPtrToDisplay(merged.EstimatedMinutes), New: intPtrToDisplay(changes.EstimatedMinutes)})
		merged.EstimatedMinutes = changes.EstimatedMinutes
	}
	if changes.IsActive != nil && *changes.IsActive != merged.IsActive {
		diff = append(diff, FieldChange{Field: "is_active", Old: fmt.Sprintf("%t", merged.IsActive), New: fmt.Sprintf("%t", *changes.IsActive)})
		merged.IsActive = *changes.IsActive
	}

	return merged, diff
}

// MergeRecords - то же для записи работ. Статус и неизменяемые ссылки
// через guard не меняются вовсе.
func MergeRecords(original entities.MaintenanceRecord, changes dto.UpdateRecordDTO) (entities.MaintenanceRecord, []FieldChange) {
	merged := original
	var diff []FieldChange

	if changes.MaintenanceDate != nil {
		newDate, err := ParseDate(*changes.MaintenanceDate)
		if err == nil && !merged.MaintenanceDate.Equal(newDate) {
			diff = append(diff, FieldChange{Field: "maintenance_date", Old: FormatDate(merged.MaintenanceDate), New: FormatDate(newDate)})
			merged.MaintenanceDate = newDate
		}
	}
	if changes.MaintenanceType != nil && *changes.MaintenanceType != merged.MaintenanceType {
		diff = append(diff, FieldChange{Field: "maintenance_type", Old: merged.MaintenanceType, New: *changes.MaintenanceType})
		merged.MaintenanceType = *changes.MaintenanceType
	}
	if changes.Description != nil && *changes.Description != merged.Description {
		diff = append(diff, FieldChange{Field: "description", Old: merged.Description, New: *changes.Description})
		merged.Description = *changes.Description
	}
	if changes.PartsUsed != nil && !AreStringSlicesEqual(merged.PartsUsed, changes.PartsUsed) {
		diff = append(diff, FieldChange{Field: "parts_used", Old: strings.Join(merged.PartsUsed, ", "), New: strings.Join(changes.PartsUsed, ", ")})
		merged.PartsUsed = changes.PartsUsed
	}
	if changes.WorkImages != nil && !AreStringSlicesEqual(merged.WorkImages, changes.WorkImages) {
		diff = append(diff, FieldChange{Field: "work_images", Old: strings.Join(merged.WorkImages, ", "), New: strings.Join(changes.WorkImages, ", ")})
		merged.WorkImages = changes.WorkImages
	}
	if changes.Cost != nil && !AreFloat64PointersEqual(merged.Cost, changes.Cost) {
		diff = append(diff, FieldChange{Field: "cost", Old: float64PtrToDisplay(merged.Cost), New: float64PtrToDisplay(changes.Cost)})
		merged.Cost = changes.Cost
	}
	if changes.ActualMinutes != nil && !AreIntPointersEqual(merged.ActualMinutes, changes.ActualMinutes) {
		diff = append(diff, FieldChange{Field: "actual_minutes", Old: intPtrToDisplay(merged.ActualMinutes), New: intPtrToDisplay(changes.ActualMinutes)})
		merged.ActualMinutes = changes.ActualMinutes
	}
	if changes.Notes.Valid && !AreStringPointersEqual(merged.Notes, &changes.Notes.String) {
		diff = append(diff, FieldChange{Field: "notes", Old: strPtrToDisplay(merged.Notes), New: changes.Notes.String})
		v := changes.Notes.String
		merged.Notes = &v
	}

	return merged, diff
}

// ChangedFieldNames возвращает имена полей в порядке обнаружения.
func ChangedFieldNames(diff []FieldChange) []string {
	names := make([]string, 0, len(diff))
	for _, c := range diff {
		names = append(names, c.Field)
	}
	return names
}
