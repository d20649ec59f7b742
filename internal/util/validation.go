package util

import (
	"airunote/internal/model"
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct : проверка по тегам validate, ошибка превращается в model.KindValidation
func ValidateStruct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return model.ValidationError("%s: не прошло проверку '%s'", e.Namespace(), e.Tag())
	}
	return model.ValidationError("%v", err)
}

// Validator : общий экземпляр для конфигурации
func Validator() *validator.Validate {
	return validate
}
