package entities

import (
	"time"

	"maintenance-system/pkg/types"
)

// Machine - единица промышленного оборудования.
// Code - бизнес-идентификатор, уникален и не меняется после создания.
type Machine struct {
	ID               uint64     `json:"id"`
	Code             string     `json:"code"`
	Name             string     `json:"name"`
	Type             string     `json:"type"`
	Manufacturer     *string    `json:"manufacturer"`
	Model            *string    `json:"model"`
	SerialNumber     *string    `json:"serial_number"`
	Location         string     `json:"location"`
	Department       *string    `json:"department"`
	Status           string     `json:"status"`
	InstallationDate *time.Time `json:"installation_date"`
	Notes            *string    `json:"notes"`

	types.BaseEntity // CreatedAt, UpdatedAt
}
