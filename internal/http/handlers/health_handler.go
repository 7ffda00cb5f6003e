package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/binhminh-backend/internal/logger"
)

const healthMessage = "Cách Nhiệt Bình Minh API is running"

// Database — то, что health check проверяет у пула (*sqlx.DB).
type Database interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	db  Database
	now func() time.Time
}

// NewHealthHandler создаёт новый health handler.
func NewHealthHandler(db Database) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Success   bool              `json:"success"`
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health обрабатывает GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Проверка подключения к БД
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.Log.WithError(err).Warn("health: база данных недоступна")
		checks["database"] = "unhealthy"
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	// Проверка статистики пула соединений
	stats := h.db.Stats()
	if stats.MaxOpenConnections > 0 && stats.InUse >= stats.MaxOpenConnections {
		checks["connection_pool"] = "warning: pool exhausted"
	} else {
		checks["connection_pool"] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Success:   status == "healthy",
		Status:    status,
		Message:   healthMessage,
		Timestamp: h.now(),
		Checks:    checks,
	})
}
