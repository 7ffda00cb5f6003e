package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/binhminh-backend/internal/logger"
	"github.com/ignatzorin/binhminh-backend/internal/metrics"
	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/repository/common"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/validation"
)

// Store описывает зависимости сервисов от шлюза к БД.
type Store interface {
	Select(ctx context.Context, st resource.Statement) ([]map[string]any, error)
	Get(ctx context.Context, st resource.Statement) (map[string]any, error)
	Count(ctx context.Context, st resource.Statement) (int64, error)
	Exec(ctx context.Context, st resource.Statement) (int64, error)
	Insert(ctx context.Context, st resource.Statement) (int64, error)
	Dialect() resource.Dialect
}

// ListResult — страница записей и пагинация.
type ListResult struct {
	Items      []map[string]any
	Pagination resource.Pagination
}

// ResourceService реализует CRUD для одной сущности по её описанию.
type ResourceService struct {
	schema *resource.Schema
	store  Store
	now    func() time.Time
}

func NewResourceService(schema *resource.Schema, store Store) *ResourceService {
	return &ResourceService{schema: schema, store: store, now: time.Now}
}

func (s *ResourceService) Schema() *resource.Schema {
	return s.schema
}

// NotFoundError — "Không tìm thấy <сущность>".
func (s *ResourceService) NotFoundError() *apperror.AppError {
	return apperror.NotFound("Không tìm thấy " + s.schema.Label)
}

// List возвращает страницу записей. query — сырые параметры запроса:
// page, limit и фильтры сущности; неизвестные ключи игнорируются.
func (s *ResourceService) List(ctx context.Context, scope resource.Scope, query map[string]string) (*ListResult, error) {
	page := resource.ParsePage(s.schema, scope, query["page"], query["limit"])

	listSt, err := resource.BuildListQuery(s.schema, scope, query, page)
	if err != nil {
		return nil, err
	}
	countSt, err := resource.BuildCountQuery(s.schema, scope, query)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Select(ctx, listSt)
	if err != nil {
		return nil, fmt.Errorf("%s: list: %w", s.schema.Name, err)
	}
	total, err := s.store.Count(ctx, countSt)
	if err != nil {
		return nil, fmt.Errorf("%s: count: %w", s.schema.Name, err)
	}

	items, err := resource.DecodeRows(s.schema, rows)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Pagination: resource.NewPagination(page, total)}, nil
}

// ListAll возвращает записи без пагинации (в пределах AdminMaxLimit).
func (s *ResourceService) ListAll(ctx context.Context, scope resource.Scope, filters map[string]string) ([]map[string]any, error) {
	st, err := resource.BuildListQuery(s.schema, scope, filters, resource.Page{Number: 1, Limit: resource.AdminMaxLimit})
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Select(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("%s: list all: %w", s.schema.Name, err)
	}
	return resource.DecodeRows(s.schema, rows)
}

// GetBySlug возвращает видимую запись по slug и увеличивает счётчик просмотров.
// Ошибка счётчика не влияет на ответ.
func (s *ResourceService) GetBySlug(ctx context.Context, slugValue string) (map[string]any, error) {
	row, err := s.get(ctx, resource.BuildGetQuery(s.schema, s.schema.SlugColumn, slugValue, true))
	if err != nil {
		return nil, err
	}
	if s.schema.ViewCounter {
		s.incrementViews(ctx, row["id"])
	}
	return row, nil
}

// GetByID возвращает запись для админки, независимо от видимости.
func (s *ResourceService) GetByID(ctx context.Context, id int64) (map[string]any, error) {
	return s.get(ctx, resource.BuildGetQuery(s.schema, "id", id, false))
}

func (s *ResourceService) get(ctx context.Context, st resource.Statement) (map[string]any, error) {
	row, err := s.store.Get(ctx, st)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, s.NotFoundError()
		}
		return nil, fmt.Errorf("%s: get: %w", s.schema.Name, err)
	}
	return resource.DecodeRow(s.schema, row)
}

func (s *ResourceService) incrementViews(ctx context.Context, rawID any) {
	id, ok := rawID.(int64)
	if !ok {
		return
	}
	if _, err := s.store.Exec(ctx, resource.BuildViewIncrement(s.schema, id)); err != nil {
		metrics.ViewIncrementErrors.WithLabelValues(s.schema.Name).Inc()
		logger.Log.WithFields(logrus.Fields{
			"entity": s.schema.Name,
			"id":     id,
			"error":  err,
		}).Warn("не удалось увеличить счётчик просмотров")
	}
}

// Create создаёт запись из данных админки и возвращает её id.
func (s *ResourceService) Create(ctx context.Context, payload map[string]any) (int64, error) {
	return s.create(ctx, payload, nil, s.schema.RequiredOnCreate, nil)
}

// Submit создаёт запись с публичной формы: принимаются только разрешённые
// поля, trusted добавляется сервером (ip, user agent).
func (s *ResourceService) Submit(ctx context.Context, payload map[string]any, trusted map[string]any) (int64, error) {
	rule := s.schema.PublicCreate
	if rule == nil {
		return 0, apperror.ErrForbidden
	}
	return s.create(ctx, payload, rule.Allowed, rule.Required, trusted)
}

func (s *ResourceService) create(ctx context.Context, payload map[string]any, allowed, required []string, trusted map[string]any) (int64, error) {
	enc, err := resource.EncodeRow(s.schema, payload)
	if err != nil {
		return 0, err
	}
	values := enc.Values
	if len(enc.Unknown) > 0 {
		logger.Log.WithFields(logrus.Fields{"entity": s.schema.Name, "keys": enc.Unknown}).
			Debug("неизвестные поля при создании пропущены")
	}

	if allowed != nil {
		permitted := make(map[string]bool, len(allowed))
		for _, name := range allowed {
			permitted[name] = true
		}
		for name := range values {
			if !permitted[name] {
				delete(values, name)
			}
		}
	}
	for name, v := range trusted {
		if s.schema.HasColumn(name) {
			values[name] = v
		}
	}

	// Обязательные поля проверяются до умолчаний: умолчание не заменяет
	// значение, которое клиент обязан передать.
	s.fillSlug(values)
	if err := resource.Validate(s.schema, values, required, false); err != nil {
		return 0, err
	}
	if err := resource.ApplyDefaults(s.schema, values, s.now()); err != nil {
		return 0, err
	}

	id, err := s.store.Insert(ctx, resource.BuildInsertStatement(s.schema, values))
	if err != nil {
		return 0, s.writeError("create", err)
	}
	return id, nil
}

// fillSlug генерирует slug из исходного поля, если его не передали.
func (s *ResourceService) fillSlug(values map[string]any) {
	if s.schema.SlugSource == "" || s.schema.SlugColumn == "" {
		return
	}
	if !validation.IsBlank(values[s.schema.SlugColumn]) {
		return
	}
	source, _ := values[s.schema.SlugSource].(string)
	if validation.IsBlank(source) {
		return
	}
	values[s.schema.SlugColumn] = slug.Make(source)
}

// Update изменяет переданные поля записи.
func (s *ResourceService) Update(ctx context.Context, id int64, payload map[string]any) error {
	st, err := resource.BuildUpdateStatement(s.schema, payload, id)
	if err != nil {
		return err
	}
	return s.exec(ctx, "update", st)
}

// UpdateValues изменяет уже приведённые значения (для сервисов поверх ресурса).
func (s *ResourceService) UpdateValues(ctx context.Context, id int64, values map[string]any) error {
	if len(values) == 0 {
		return apperror.ErrNoUpdatableFields
	}
	return s.exec(ctx, "update", resource.BuildUpdateValues(s.schema, values, id))
}

// Delete удаляет запись, если на неё не ссылаются дочерние записи.
func (s *ResourceService) Delete(ctx context.Context, id int64) error {
	for _, dep := range s.schema.Dependents {
		n, err := s.store.Count(ctx, resource.BuildDependentCount(dep, id))
		if err != nil {
			return fmt.Errorf("%s: count dependents in %s: %w", s.schema.Name, dep.Table, err)
		}
		if n > 0 {
			return apperror.HasDependents(n, fmt.Sprintf(dep.Reason, n))
		}
	}
	return s.exec(ctx, "delete", resource.BuildDeleteStatement(s.schema, id))
}

func (s *ResourceService) exec(ctx context.Context, op string, st resource.Statement) error {
	n, err := s.store.Exec(ctx, st)
	if err != nil {
		return s.writeError(op, err)
	}
	if n == 0 {
		return s.NotFoundError()
	}
	return nil
}

// writeError оставляет ошибки приложения как есть, остальное оборачивает.
func (s *ResourceService) writeError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == apperror.ErrCodeDuplicateKey && s.schema.DuplicateMessage != "" {
			return apperror.Wrap(appErr.Cause, apperror.ErrCodeDuplicateKey, s.schema.DuplicateMessage)
		}
		return appErr
	}
	return fmt.Errorf("%s: %s: %w", s.schema.Name, op, err)
}
