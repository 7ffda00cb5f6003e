package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/binhminh-backend/internal/http/response"
	"github.com/ignatzorin/binhminh-backend/internal/service"
)

// ContactHandler — форма обратной связи и работа с заявками в админке.
type ContactHandler struct {
	*ResourceHandler
	contacts *service.ContactService
}

// NewContactHandler создаёт хэндлер заявок.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{
		ResourceHandler: NewResourceHandler(contacts.ResourceService),
		contacts:        contacts,
	}
}

type contactStatusRequest struct {
	Status    string  `json:"status"`
	AdminNote *string `json:"admin_note"`
}

// Submit обрабатывает POST /api/contact/submit.
func (h *ContactHandler) Submit(c *gin.Context) {
	h.tag(c)
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := h.contacts.SubmitContact(c.Request.Context(), payload, service.ContactMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Cảm ơn bạn đã liên hệ! Chúng tôi sẽ phản hồi sớm nhất.", gin.H{"id": id})
}

// UnreadCount обрабатывает GET /api/contact/admin/unread-count.
func (h *ContactHandler) UnreadCount(c *gin.Context) {
	h.tag(c)
	n, err := h.contacts.UnreadCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", gin.H{"count": n})
}

// Stats обрабатывает GET /api/contact/admin/stats/summary.
func (h *ContactHandler) Stats(c *gin.Context) {
	h.tag(c)
	stats, err := h.contacts.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", stats)
}

// Open обрабатывает GET /api/contact/admin/:id и отмечает заявку прочитанной.
func (h *ContactHandler) Open(c *gin.Context) {
	h.tag(c)
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	row, err := h.contacts.Open(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", row)
}

// UpdateStatus обрабатывает PUT /api/contact/admin/:id/status.
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	h.tag(c)
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req contactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, errInvalidJSON)
		return
	}

	if err := h.contacts.UpdateStatus(c.Request.Context(), id, req.Status, req.AdminNote); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Cập nhật trạng thái thành công", nil)
}
