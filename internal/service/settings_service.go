package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
)

const settingKeyColumn = "setting_key"

// SettingsService — настройки сайта (ключ-значение).
type SettingsService struct {
	*ResourceService
}

func NewSettingsService(schema *resource.Schema, store Store) *SettingsService {
	return &SettingsService{ResourceService: NewResourceService(schema, store)}
}

// All возвращает все настройки как ключ -> значение.
func (s *SettingsService) All(ctx context.Context) (map[string]any, error) {
	rows, err := s.ListAll(ctx, resource.ScopeAdmin, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(rows))
	for _, row := range rows {
		out[cast.ToString(row[settingKeyColumn])] = row["setting_value"]
	}
	return out, nil
}

// GetByKey возвращает одну настройку целиком.
func (s *SettingsService) GetByKey(ctx context.Context, key string) (map[string]any, error) {
	return s.get(ctx, resource.BuildGetQuery(s.schema, settingKeyColumn, key, false))
}

// Upsert создаёт настройку или обновляет значение существующей.
func (s *SettingsService) Upsert(ctx context.Context, key string, payload map[string]any) error {
	key = strings.TrimSpace(key)

	input := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		if k == settingKeyColumn {
			continue
		}
		input[k] = v
	}
	enc, err := resource.EncodeRow(s.schema, input)
	if err != nil {
		return err
	}
	if err := resource.UnknownKeysError(enc.Unknown); err != nil {
		return err
	}
	values := enc.Values
	values[settingKeyColumn] = key
	if _, ok := values["setting_value"]; !ok {
		return apperror.ErrNoUpdatableFields
	}

	if err := resource.Validate(s.schema, values, s.schema.RequiredOnCreate, false); err != nil {
		return err
	}

	st := resource.BuildUpsertStatement(s.schema, s.store.Dialect(), settingKeyColumn, values)
	if _, err := s.store.Exec(ctx, st); err != nil {
		return fmt.Errorf("settings: upsert %s: %w", key, err)
	}
	return nil
}
