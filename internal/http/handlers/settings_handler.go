package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/binhminh-backend/internal/http/response"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/service"
)

// SettingsHandler — настройки сайта.
type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// All GET /api/settings
func (h *SettingsHandler) All(c *gin.Context) {
	c.Set(response.EntityKey, resource.Settings)
	values, err := h.settings.All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", values)
}

// Get GET /api/settings/:key
func (h *SettingsHandler) Get(c *gin.Context) {
	c.Set(response.EntityKey, resource.Settings)
	row, err := h.settings.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", row)
}

// Upsert PUT /api/settings/admin/:key
func (h *SettingsHandler) Upsert(c *gin.Context) {
	c.Set(response.EntityKey, resource.Settings)
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.settings.Upsert(c.Request.Context(), c.Param("key"), payload); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Cập nhật cài đặt thành công", nil)
}
