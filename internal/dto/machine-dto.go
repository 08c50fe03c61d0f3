package dto

import "github.com/aarondl/null/v8"

type MachineDTO struct {
	ID               uint64  `json:"id"`
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Manufacturer     *string `json:"manufacturer,omitempty"`
	Model            *string `json:"model,omitempty"`
	SerialNumber     *string `json:"serial_number,omitempty"`
	Location         string  `json:"location"`
	Department       *string `json:"department,omitempty"`
	Status           string  `json:"status"`
	InstallationDate string  `json:"installation_date,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

type CreateMachineDTO struct {
	Code             string  `json:"code" validate:"omitempty,min=2,max=64"`
	Name             string  `json:"name" validate:"required,min=1,max=255"`
	Type             string  `json:"type" validate:"required,min=1,max=128"`
	Manufacturer     *string `json:"manufacturer" validate:"omitempty,max=255"`
	Model            *string `json:"model" validate:"omitempty,max=255"`
	SerialNumber     *string `json:"serial_number" validate:"omitempty,max=255"`
	Location         string  `json:"location" validate:"required,min=1,max=255"`
	Department       *string `json:"department" validate:"omitempty,max=255"`
	Status           string  `json:"status" validate:"omitempty,machine_status"`
	InstallationDate *string `json:"installation_date" validate:"omitempty,datetime=2006-01-02"`
	Notes            *string `json:"notes"`
}

// UpdateMachineDTO - частичное обновление. nil / невалидное поле означает
// "не тронуто"; Code в DTO отсутствует, бизнес-идентификатор неизменяем.
type UpdateMachineDTO struct {
	Name             *string     `json:"name" validate:"omitempty,min=1,max=255"`
	Type             *string     `json:"type" validate:"omitempty,min=1,max=128"`
	Manufacturer     null.String `json:"manufacturer" validate:"omitempty"`
	Model            null.String `json:"model" validate:"omitempty"`
	SerialNumber     null.String `json:"serial_number" validate:"omitempty"`
	Location         *string     `json:"location" validate:"omitempty,min=1,max=255"`
	Department       null.String `json:"department" validate:"omitempty"`
	Status           *string     `json:"status" validate:"omitempty,machine_status"`
	InstallationDate *string     `json:"installation_date" validate:"omitempty,datetime=2006-01-02"`
	Notes            null.String `json:"notes" validate:"omitempty"`
}

// IsZero сообщает, что клиент не прислал ни одного поля.
func (d UpdateMachineDTO) IsZero() bool {
	return d.Name == nil && d.Type == nil && !d.Manufacturer.Valid && !d.Model.Valid &&
		!d.SerialNumber.Valid && d.Location == nil && !d.Department.Valid &&
		d.Status == nil && d.InstallationDate == nil && !d.Notes.Valid
}

// MachineUpdateResultDTO - результат обновления через guard.
// ChangedFields пуст, когда запись не тронута (no-op).
type MachineUpdateResultDTO struct {
	Machine       MachineDTO `json:"machine"`
	ChangedFields []string   `json:"changed_fields"`
}
