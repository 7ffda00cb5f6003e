package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/ignatzorin/binhminh-backend/internal/goroutine"
	"github.com/ignatzorin/binhminh-backend/internal/logger"
	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/ws"
)

// EventPublisher рассылает события администраторам (ws.Hub).
type EventPublisher interface {
	Publish(eventType string, data any) error
}

// publishAsync отправляет событие в отдельной горутине: запрос не ждёт рассылки.
func publishAsync(p EventPublisher, eventType string, data any) {
	if p == nil {
		return
	}
	goroutine.SafeGo(func() {
		if err := p.Publish(eventType, data); err != nil {
			logger.Log.WithError(err).WithField("event", eventType).Warn("не удалось отправить событие")
		}
	})
}

// contactTransitions: целевой статус -> статусы, из которых он допустим.
// Повторная установка того же статуса разрешена (правка заметки).
var contactTransitions = map[string][]string{
	resource.ContactStatusNew:        {resource.ContactStatusNew},
	resource.ContactStatusProcessing: {resource.ContactStatusNew, resource.ContactStatusProcessing},
	resource.ContactStatusCompleted:  {resource.ContactStatusProcessing, resource.ContactStatusCompleted},
	resource.ContactStatusSpam:       {resource.ContactStatusNew, resource.ContactStatusProcessing, resource.ContactStatusSpam},
}

// ContactMeta — данные запроса, которые сервер добавляет к заявке.
type ContactMeta struct {
	IP        string
	UserAgent string
}

// ContactStats — сводка по заявкам для админки.
type ContactStats struct {
	Total      int64 `json:"total"`
	New        int64 `json:"new"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Spam       int64 `json:"spam"`
	Unread     int64 `json:"unread"`
}

// ContactService — заявки с формы обратной связи.
type ContactService struct {
	*ResourceService
	events EventPublisher
}

func NewContactService(schema *resource.Schema, store Store, events EventPublisher) *ContactService {
	return &ContactService{ResourceService: NewResourceService(schema, store), events: events}
}

// SubmitContact сохраняет заявку с публичной формы и уведомляет администраторов.
func (s *ContactService) SubmitContact(ctx context.Context, payload map[string]any, meta ContactMeta) (int64, error) {
	trusted := map[string]any{}
	if meta.IP != "" {
		trusted["ip_address"] = meta.IP
	}
	if meta.UserAgent != "" {
		trusted["user_agent"] = meta.UserAgent
	}

	id, err := s.Submit(ctx, payload, trusted)
	if err != nil {
		return 0, err
	}

	logger.Log.WithFields(logrus.Fields{"contact_id": id, "ip": meta.IP}).Info("новая заявка с сайта")
	publishAsync(s.events, ws.EventContactSubmitted, map[string]any{
		"id":        id,
		"full_name": payload["full_name"],
		"subject":   payload["subject"],
	})
	return id, nil
}

// UnreadCount — число непрочитанных заявок.
func (s *ContactService) UnreadCount(ctx context.Context) (int64, error) {
	n, err := s.store.Count(ctx, resource.Statement{
		Text: "SELECT COUNT(*) FROM " + s.schema.Table + " WHERE is_read = ?",
		Args: []any{false},
	})
	if err != nil {
		return 0, fmt.Errorf("contacts: unread count: %w", err)
	}
	return n, nil
}

// Stats считает заявки по статусам одним запросом.
func (s *ContactService) Stats(ctx context.Context) (*ContactStats, error) {
	st := resource.Statement{
		Text: "SELECT COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS new_count, " +
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS processing_count, " +
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS completed_count, " +
			"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS spam_count, " +
			"COALESCE(SUM(CASE WHEN is_read = ? THEN 1 ELSE 0 END), 0) AS unread_count " +
			"FROM " + s.schema.Table,
		Args: []any{
			resource.ContactStatusNew,
			resource.ContactStatusProcessing,
			resource.ContactStatusCompleted,
			resource.ContactStatusSpam,
			false,
		},
	}
	row, err := s.store.Get(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("contacts: stats: %w", err)
	}

	// SUM в MySQL возвращает DECIMAL, приводим всё к int64
	return &ContactStats{
		Total:      cast.ToInt64(row["total"]),
		New:        cast.ToInt64(row["new_count"]),
		Processing: cast.ToInt64(row["processing_count"]),
		Completed:  cast.ToInt64(row["completed_count"]),
		Spam:       cast.ToInt64(row["spam_count"]),
		Unread:     cast.ToInt64(row["unread_count"]),
	}, nil
}

// Open возвращает заявку и отмечает её прочитанной при первом просмотре.
func (s *ContactService) Open(ctx context.Context, id int64) (map[string]any, error) {
	row, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if read, _ := row["is_read"].(bool); read {
		return row, nil
	}

	_, err = s.store.Exec(ctx, resource.Statement{
		Text: "UPDATE " + s.schema.Table + " SET is_read = ? WHERE id = ?",
		Args: []any{true, id},
	})
	if err != nil {
		return nil, fmt.Errorf("contacts: mark read: %w", err)
	}
	row["is_read"] = true
	return row, nil
}

// UpdateStatus переводит заявку в новый статус. note == nil оставляет заметку без изменений.
func (s *ContactService) UpdateStatus(ctx context.Context, id int64, status string, note *string) error {
	status = strings.TrimSpace(status)
	from, ok := contactTransitions[status]
	if !ok {
		return apperror.Validation([]apperror.FieldError{{Field: "status", Message: "Trạng thái không hợp lệ"}})
	}

	sets := []string{"status = ?"}
	args := []any{status}
	if note != nil {
		sets = append(sets, "admin_note = ?")
		args = append(args, *note)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	marks := make([]string, len(from))
	for i := range from {
		marks[i] = "?"
	}
	args = append(args, id)
	for _, f := range from {
		args = append(args, f)
	}

	n, err := s.store.Exec(ctx, resource.Statement{
		Text: "UPDATE " + s.schema.Table + " SET " + strings.Join(sets, ", ") +
			" WHERE id = ? AND status IN (" + strings.Join(marks, ", ") + ")",
		Args: args,
	})
	if err != nil {
		return fmt.Errorf("contacts: update status: %w", err)
	}
	if n > 0 {
		return nil
	}

	// Ни одна строка не совпала: либо заявки нет, либо переход запрещён
	row, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	current, _ := row["status"].(string)
	return apperror.Validation([]apperror.FieldError{{
		Field:   "status",
		Message: fmt.Sprintf("Không thể chuyển trạng thái từ %s sang %s", current, status),
	}})
}
