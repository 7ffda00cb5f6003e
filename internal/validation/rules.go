package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Value проверяет одно значение по тегам validator ("email,max=255").
// Ошибка содержит сообщение, которое можно отдать клиенту.
func Value(value any, rules string) error {
	if rules == "" || value == nil {
		return nil
	}
	err := validate.Var(value, rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errors.New(message(verrs[0]))
	}
	return fmt.Errorf("validation: rules %q: %w", rules, err)
}

// IsBlank — значение не передано: nil или строка из пробелов.
func IsBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

// RequiredMessage — текст для отсутствующего обязательного поля.
func RequiredMessage(field string) string {
	return fmt.Sprintf("Trường %s là bắt buộc", field)
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "email":
		return "Email không hợp lệ"
	case "max":
		if isString {
			return fmt.Sprintf("Không được vượt quá %s ký tự", fe.Param())
		}
		return fmt.Sprintf("Giá trị không được lớn hơn %s", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("Phải có ít nhất %s ký tự", fe.Param())
		}
		return fmt.Sprintf("Giá trị không được nhỏ hơn %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Giá trị không được nhỏ hơn %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Giá trị không được lớn hơn %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Giá trị phải là một trong: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return "Đường dẫn không hợp lệ"
	default:
		return "Giá trị không hợp lệ"
	}
}
