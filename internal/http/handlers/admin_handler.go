package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/binhminh-backend/internal/http/response"
	"github.com/ignatzorin/binhminh-backend/internal/service"
)

// AdminHandler — вход в админку, учётные записи и сводка для дашборда.
type AdminHandler struct {
	*ResourceHandler
	admins    *service.AdminService
	dashboard *service.DashboardService
}

// NewAdminHandler создаёт хэндлер админки.
func NewAdminHandler(admins *service.AdminService, dashboard *service.DashboardService) *AdminHandler {
	return &AdminHandler{
		ResourceHandler: NewResourceHandler(admins.ResourceService),
		admins:          admins,
		dashboard:       dashboard,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login обрабатывает POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	h.tag(c)
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, errInvalidJSON)
		return
	}

	result, err := h.admins.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Đăng nhập thành công", result)
}

// Me обрабатывает GET /api/admin/me.
func (h *AdminHandler) Me(c *gin.Context) {
	h.tag(c)
	id, err := currentAdminID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	row, err := h.admins.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", row)
}

// CreateUser обрабатывает POST /api/admin/users.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	h.tag(c)
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := h.admins.CreateUser(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Tạo tài khoản admin thành công", gin.H{"id": id})
}

// UpdateUser обрабатывает PUT /api/admin/users/:id.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	h.tag(c)
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.admins.UpdateUser(c.Request.Context(), id, payload); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Cập nhật tài khoản thành công", nil)
}

// DeleteUser обрабатывает DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	h.tag(c)
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	actorID, err := currentAdminID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.admins.DeleteUser(c.Request.Context(), id, actorID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Xóa tài khoản thành công", nil)
}

// DashboardStats обрабатывает GET /api/admin/dashboard/stats.
func (h *AdminHandler) DashboardStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", stats)
}
