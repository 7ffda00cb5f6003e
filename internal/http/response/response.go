package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/binhminh-backend/internal/logger"
	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
)

// EntityKey — ключ gin.Context с именем сущности текущего запроса (для логов).
const EntityKey = "entity"

// Envelope — единый формат ответа API.
type Envelope struct {
	Success    bool                  `json:"success"`
	Message    string                `json:"message,omitempty"`
	Data       interface{}           `json:"data,omitempty"`
	Pagination *resource.Pagination  `json:"pagination,omitempty"`
	Errors     []apperror.FieldError `json:"errors,omitempty"`
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Paginated отдаёт страницу записей. Пустая страница — пустой массив, не null.
func Paginated(c *gin.Context, data []map[string]any, p resource.Pagination) {
	if data == nil {
		data = []map[string]any{}
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

// Error переводит ошибку в конверт. Внутренние ошибки логируются целиком,
// клиент получает только общее сообщение.
func Error(c *gin.Context, err error) {
	status, body := build(c, err)
	c.JSON(status, body)
}

// Abort — то же, что Error, но прерывает цепочку middleware.
func Abort(c *gin.Context, err error) {
	status, body := build(c, err)
	c.AbortWithStatusJSON(status, body)
}

func build(c *gin.Context, err error) (int, Envelope) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus >= http.StatusInternalServerError {
		logInternal(c, err)
		return http.StatusInternalServerError, Envelope{Success: false, Message: apperror.ErrInternal.Message}
	}

	body := Envelope{Success: false, Message: appErr.Message, Errors: appErr.Fields}
	if appErr.Code == apperror.ErrCodeHasDependents {
		body.Data = gin.H{"count": appErr.Count}
	}
	return appErr.HTTPStatus, body
}

func logInternal(c *gin.Context, err error) {
	logger.Log.WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
		"entity": c.GetString(EntityKey),
		"error":  err.Error(),
	}).Error("Request error")
}
