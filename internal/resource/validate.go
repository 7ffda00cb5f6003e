package resource

import (
	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/validation"
)

// Validate проверяет приведённые значения и собирает все нарушения сразу.
// При partial (обновление) обязательные поля проверяются только если переданы.
func Validate(s *Schema, values map[string]any, required []string, partial bool) error {
	var fields []apperror.FieldError
	missing := make(map[string]bool, len(required))

	for _, name := range required {
		v, present := values[name]
		if partial && !present {
			continue
		}
		if validation.IsBlank(v) {
			exposed := s.ExposedName(name)
			fields = append(fields, apperror.FieldError{Field: exposed, Message: validation.RequiredMessage(exposed)})
			missing[name] = true
		}
	}

	for _, col := range s.Columns {
		if col.Rules == "" || missing[col.Name] {
			continue
		}
		v, ok := values[col.Name]
		if !ok || validation.IsBlank(v) {
			continue
		}
		if err := validation.Value(v, col.Rules); err != nil {
			fields = append(fields, apperror.FieldError{Field: s.ExposedName(col.Name), Message: err.Error()})
		}
	}

	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}
