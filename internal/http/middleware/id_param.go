package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/binhminh-backend/internal/http/response"
	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
)

// ContextIDKey — ключ, под которым IDParam сохраняет разобранный id.
const ContextIDKey = "pathID"

// IDParam проверяет, что параметр пути — положительное целое число.
// Использование: router.GET("/:id", IDParam("id"), handler.Get)
func IDParam(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
		if err != nil || id <= 0 {
			response.Abort(c, apperror.Validation([]apperror.FieldError{{
				Field:   paramName,
				Message: "ID không hợp lệ",
			}}))
			return
		}

		c.Set(ContextIDKey, id)
		c.Next()
	}
}
