package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
)

const invalidValueMessage = "Giá trị không hợp lệ"

// DecodeRow приводит строку из БД к виду ответа API: типы по колонкам,
// разобранные JSON-колонки, скрытые поля удалены, алиасы добавлены рядом
// с исходными ключами.
func DecodeRow(s *Schema, row map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(row)+len(s.Aliases))
	for key, raw := range row {
		if b, ok := raw.([]byte); ok {
			raw = string(b)
		}
		col, known := s.Column(key)
		if known && col.Hidden {
			continue
		}
		if !known || raw == nil {
			out[key] = raw
			continue
		}
		v, err := decodeValue(s, col, raw)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	for _, a := range s.Aliases {
		if v, ok := out[a.Stored]; ok {
			out[a.Exposed] = v
		}
	}
	return out, nil
}

// DecodeRows применяет DecodeRow к каждой строке.
func DecodeRows(s *Schema, rows []map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		decoded, err := DecodeRow(s, row)
		if err != nil {
			return nil, err
		}
		out = append(out, decoded)
	}
	return out, nil
}

func decodeValue(s *Schema, col Column, raw any) (any, error) {
	var (
		v   any
		err error
	)
	switch col.Kind {
	case KindBool:
		v, err = toBool(raw)
	case KindInt:
		v, err = cast.ToInt64E(raw)
	case KindFloat:
		v, err = cast.ToFloat64E(raw)
	case KindJSON:
		text, ok := raw.(string)
		if !ok {
			return raw, nil
		}
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		if jerr := json.Unmarshal([]byte(text), &v); jerr != nil {
			return nil, apperror.Wrap(jerr, apperror.ErrCodeMalformedStoredJSON,
				fmt.Sprintf("%s.%s contains malformed JSON", s.Table, col.Name))
		}
		return v, nil
	default:
		return raw, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resource: decode %s.%s: %w", s.Table, col.Name, err)
	}
	return v, nil
}

// Encoded — входные данные клиента, приведённые к колонкам таблицы.
type Encoded struct {
	// Values: имя колонки -> значение для параметра запроса.
	Values map[string]any
	// Unknown — ключи, которых нет у сущности.
	Unknown []string
	// Ignored — известные, но недоступные для записи ключи (id, created_at, поля JOIN).
	Ignored []string
}

// EncodeRow переводит данные клиента в колонки: алиасы в имена колонок,
// JSON-значения в текст, значения приводятся к типу колонки. Если передан
// и алиас, и исходное имя, побеждает алиас. Значения, которые нельзя
// привести к типу колонки, возвращаются как ошибка валидации.
func EncodeRow(s *Schema, input map[string]any) (Encoded, error) {
	enc := Encoded{Values: make(map[string]any, len(input))}

	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	// Сначала имена колонок, затем алиасы: значение алиаса перезаписывает.
	sort.SliceStable(keys, func(i, j int) bool {
		ai, aj := s.isAlias(keys[i]), s.isAlias(keys[j])
		if ai != aj {
			return !ai
		}
		return keys[i] < keys[j]
	})

	var fields []apperror.FieldError
	for _, key := range keys {
		if !s.Known(key) {
			enc.Unknown = append(enc.Unknown, key)
			continue
		}
		stored := s.StoredName(key)
		if !s.Writable(stored) {
			enc.Ignored = append(enc.Ignored, key)
			continue
		}
		col, _ := s.Column(stored)
		v, err := EncodeValue(col, input[key])
		if err != nil {
			fields = append(fields, apperror.FieldError{Field: key, Message: invalidValueMessage})
			continue
		}
		enc.Values[stored] = v
	}

	if len(fields) > 0 {
		return enc, apperror.Validation(fields)
	}
	return enc, nil
}

func (s *Schema) isAlias(key string) bool {
	_, ok := s.exposedToStored[key]
	return ok
}

// EncodeValue приводит одно значение к типу колонки.
func EncodeValue(col Column, v any) (any, error) {
	if v == nil {
		// NOT NULL флаг: null не превращается молча в false.
		if col.Kind == KindBool {
			return nil, fmt.Errorf("resource: %s must not be null", col.Name)
		}
		return nil, nil
	}

	switch col.Kind {
	case KindString, KindText:
		switch v.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("resource: %s expects a scalar", col.Name)
		}
		return cast.ToStringE(v)
	case KindInt:
		if isBlankString(v) {
			return nil, nil
		}
		if f, ok := v.(float64); ok && f != math.Trunc(f) {
			return nil, fmt.Errorf("resource: %s expects an integer", col.Name)
		}
		return cast.ToInt64E(v)
	case KindFloat:
		if isBlankString(v) {
			return nil, nil
		}
		return cast.ToFloat64E(v)
	case KindBool:
		if isBlankString(v) {
			return false, nil
		}
		return toBool(v)
	case KindJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case KindTime:
		if isBlankString(v) {
			return nil, nil
		}
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
		return cast.ToTimeE(v)
	}
	return v, nil
}

// toBool понимает TINYINT(1) из MySQL и числа из JSON.
func toBool(v any) (bool, error) {
	switch n := v.(type) {
	case int64:
		return n != 0, nil
	case float64:
		return n != 0, nil
	}
	return cast.ToBoolE(v)
}

func isBlankString(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// ApplyDefaults дополняет значения для вставки умолчаниями из описания.
func ApplyDefaults(s *Schema, values map[string]any, now time.Time) error {
	for _, col := range s.Columns {
		if col.Virtual {
			continue
		}
		if _, ok := values[col.Name]; ok {
			continue
		}
		switch {
		case col.DefaultNow:
			values[col.Name] = now
		case col.Default != nil:
			v, err := EncodeValue(col, col.Default)
			if err != nil {
				return fmt.Errorf("resource: default for %s.%s: %w", s.Table, col.Name, err)
			}
			values[col.Name] = v
		}
	}
	return nil
}
