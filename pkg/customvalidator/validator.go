package customvalidator

import (
	"reflect"
	"regexp"

	"as-system/pkg/constants"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations регистрирует все наши правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	registerNullTypes(v)

	if err := v.RegisterValidation("request_status", isRequestStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("assignment_status", isAssignmentStatus); err != nil {
		return err
	}
	if err := v.RegisterValidation("phone_kr", isKoreanPhoneNumber); err != nil {
		return err
	}
	return nil
}

func isRequestStatus(fl validator.FieldLevel) bool {
	return constants.IsRequestStatus(fl.Field().String())
}

func isAssignmentStatus(fl validator.FieldLevel) bool {
	return constants.IsAssignmentStatus(fl.Field().String())
}

func isKoreanPhoneNumber(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^01[016789]-?\d{3,4}-?\d{4}$`)
	return re.MatchString(fl.Field().String())
}

// registerNullTypes учит валидатор "смотреть внутрь" типов null.String, null.Int и т.д.
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.String); ok {
			if val.Valid {
				return val.String
			}
		}
		return nil
	}, null.String{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Int); ok {
			if val.Valid {
				return val.Int
			}
		}
		return nil
	}, null.Int{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if val, ok := field.Interface().(null.Time); ok {
			if val.Valid {
				return val.Time
			}
		}
		return nil
	}, null.Time{})
}
