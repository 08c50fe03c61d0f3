// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"github.com/go-playground/validator/v10"

	"maintenance-system/pkg/constants"
)

// RegisterCustomValidations регистрирует доменные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("machine_status", isMachineStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("priority_code", isPriorityCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("record_status", isRecordStatus); err != nil {
		return err
	}

	return nil
}

func isMachineStatus(fl validator.FieldLevel) bool {
	return constants.IsValidMachineStatus(fl.Field().String())
}

func isPriorityCode(fl validator.FieldLevel) bool {
	return constants.IsValidPriority(fl.Field().String())
}

func isRecordStatus(fl validator.FieldLevel) bool {
	return constants.IsValidRecordStatus(fl.Field().String())
}
