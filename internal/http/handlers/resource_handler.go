package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/binhminh-backend/internal/http/response"
	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/service"
)

// ResourceHandler обслуживает типовые CRUD-маршруты одной сущности.
type ResourceHandler struct {
	svc *service.ResourceService
}

// NewResourceHandler создаёт хэндлер сущности.
func NewResourceHandler(svc *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

func (h *ResourceHandler) tag(c *gin.Context) {
	c.Set(response.EntityKey, h.svc.Schema().Name)
}

func (h *ResourceHandler) label() string {
	return h.svc.Schema().Label
}

// List обрабатывает GET /api/{entity}: только видимые записи.
func (h *ResourceHandler) List(c *gin.Context) {
	h.list(c, resource.ScopePublic)
}

// AdminList обрабатывает GET /api/{entity}/admin/list: все записи.
func (h *ResourceHandler) AdminList(c *gin.Context) {
	h.list(c, resource.ScopeAdmin)
}

func (h *ResourceHandler) list(c *gin.Context, scope resource.Scope) {
	h.tag(c)
	result, err := h.svc.List(c.Request.Context(), scope, queryMap(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result.Items, result.Pagination)
}

// GetBySlug обрабатывает GET /api/{entity}/:slug.
func (h *ResourceHandler) GetBySlug(c *gin.Context) {
	h.tag(c)
	row, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", row)
}

// GetByID обрабатывает GET /api/{entity}/admin/:id.
func (h *ResourceHandler) GetByID(c *gin.Context) {
	h.tag(c)
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	row, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "", row)
}

// Create обрабатывает POST /api/{entity}/admin.
func (h *ResourceHandler) Create(c *gin.Context) {
	h.tag(c)
	payload, err := bindPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := h.svc.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Tạo "+h.label()+" thành công", gin.H{"id": id})
}

// Update обрабатывает PUT /api/{entity}/admin/:id.
func (h *ResourceHandler) Update(c *gin.Context) {
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
	if err := h.svc.Update(c.Request.Context(), id, payload); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Cập nhật "+h.label()+" thành công", nil)
}

// Delete обрабатывает DELETE /api/{entity}/admin/:id.
func (h *ResourceHandler) Delete(c *gin.Context) {
	h.tag(c)
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Xóa "+h.label()+" thành công", nil)
}

// Children обрабатывает GET /api/categories/parent/:parentId.
func (h *ResourceHandler) Children(c *gin.Context) {
	h.tag(c)
	parentID, err := strconv.ParseInt(c.Param("parentId"), 10, 64)
	if err != nil || parentID <= 0 {
		response.Error(c, apperror.Validation([]apperror.FieldError{{Field: "parentId", Message: "ID không hợp lệ"}}))
		return
	}
	h.listAll(c, map[string]string{"parent_id": strconv.FormatInt(parentID, 10)})
}

// FeaturedInHeader обрабатывает GET /api/products/featured-in-header.
func (h *ResourceHandler) FeaturedInHeader(c *gin.Context) {
	h.tag(c)
	h.listAll(c, map[string]string{"featured_in_header": "true"})
}

func (h *ResourceHandler) listAll(c *gin.Context, filters map[string]string) {
	rows, err := h.svc.ListAll(c.Request.Context(), resource.ScopePublic, filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	response.Success(c, "", rows)
}
