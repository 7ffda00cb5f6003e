package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/binhminh-backend/internal/http/middleware"
	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
)

var (
	errUserNotFound = apperror.ErrUnauthorized
	errInvalidJSON  = apperror.Validation([]apperror.FieldError{{Field: "body", Message: "Dữ liệu JSON không hợp lệ"}})
	errInvalidID    = apperror.Validation([]apperror.FieldError{{Field: "id", Message: "ID không hợp lệ"}})
)

// pathID возвращает id, разобранный middleware.IDParam. Без middleware
// разбирает параметр :id сам.
func pathID(c *gin.Context) (int64, error) {
	if raw, ok := c.Get(middleware.ContextIDKey); ok {
		if id, ok := raw.(int64); ok {
			return id, nil
		}
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// currentAdminID извлекает id администратора из контекста.
func currentAdminID(c *gin.Context) (int64, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, errUserNotFound
	}

	id, ok := raw.(int64)
	if !ok || id <= 0 {
		return 0, errUserNotFound
	}

	return id, nil
}

// bindPayload читает тело запроса как JSON-объект. Пустое тело — пустой объект.
func bindPayload(c *gin.Context) (map[string]any, error) {
	payload := map[string]any{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, errInvalidJSON
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

// queryMap — параметры строки запроса (первое значение каждого ключа).
func queryMap(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	out := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			out[key] = vals[0]
		}
	}
	return out
}
