package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/binhminh-backend/internal/http/middleware"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/service"
)

func newResourceRouter(t *testing.T, name string) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gw, mock := newMockGateway(t)
	h := NewResourceHandler(service.NewResourceService(testRegistry.MustGet(name), gw))

	r := gin.New()
	r.GET("/items", h.List)
	r.GET("/items/parent/:parentId", h.Children)
	r.GET("/items/:slug", h.GetBySlug)
	r.GET("/admin/list", h.AdminList)
	r.GET("/admin/:id", middleware.IDParam("id"), h.GetByID)
	r.POST("/admin", h.Create)
	r.PUT("/admin/:id", middleware.IDParam("id"), h.Update)
	r.DELETE("/admin/:id", middleware.IDParam("id"), h.Delete)
	return r, mock
}

func TestResourceHandler_ListReturnsPagination(t *testing.T) {
	r, mock := newResourceRouter(t, resource.Products)

	mock.ExpectQuery("FROM products p").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(int64(1), "Túi khí", "tui-khi"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products p")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	w := perform(r, http.MethodGet, "/items?page=1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["data"], 1)
	assert.Equal(t, map[string]any{"page": float64(1), "limit": float64(12), "total": float64(1), "totalPages": float64(1)}, body["pagination"])
}

func TestResourceHandler_ListEmptyIsArray(t *testing.T) {
	r, mock := newResourceRouter(t, resource.Partners)

	mock.ExpectQuery("FROM partners pt").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	w := perform(r, http.MethodGet, "/items", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestResourceHandler_BadFilterIsValidation(t *testing.T) {
	r, _ := newResourceRouter(t, resource.Products)

	w := perform(r, http.MethodGet, "/items?is_featured=maybe", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["errors"])
}

func TestResourceHandler_InternalErrorHidesDetails(t *testing.T) {
	r, mock := newResourceRouter(t, resource.Products)

	mock.ExpectQuery("FROM products p").WillReturnError(errors.New("connection refused to 10.0.0.5"))

	w := perform(r, http.MethodGet, "/items", nil, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Equal(t, "Có lỗi xảy ra, vui lòng thử lại sau", decodeBody(t, w)["message"])
}

func TestResourceHandler_GetBySlugNotFound(t *testing.T) {
	r, mock := newResourceRouter(t, resource.Products)

	mock.ExpectQuery("WHERE p.slug = ?").WithArgs("khong-co").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := perform(r, http.MethodGet, "/items/khong-co", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Không tìm thấy sản phẩm", decodeBody(t, w)["message"])
}

func TestResourceHandler_GetByIDInvalid(t *testing.T) {
	r, _ := newResourceRouter(t, resource.Products)

	w := perform(r, http.MethodGet, "/admin/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResourceHandler_Create(t *testing.T) {
	r, mock := newResourceRouter(t, resource.Partners)

	mock.ExpectExec("INSERT INTO partners").WillReturnResult(sqlmock.NewResult(7, 1))

	w := perform(r, http.MethodPost, "/admin", jsonBody(t, map[string]any{"name": "Hoa Sen", "logo_url": "/uploads/l.png"}), jsonHeader)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Tạo đối tác thành công", body["message"])
	assert.Equal(t, map[string]any{"id": float64(7)}, body["data"])
}

func TestResourceHandler_CreateInvalidJSON(t *testing.T) {
	r, _ := newResourceRouter(t, resource.Partners)

	w := perform(r, http.MethodPost, "/admin", strings.NewReader("{name:"), jsonHeader)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])
}

func TestResourceHandler_CreateMissingRequired(t *testing.T) {
	r, _ := newResourceRouter(t, resource.Partners)

	w := perform(r, http.MethodPost, "/admin", jsonBody(t, map[string]any{"website": "https://x.vn"}), jsonHeader)
	require.Equal(t, http.StatusBadRequest, w.Code)

	errs, ok := decodeBody(t, w)["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].(map[string]any)["field"])
}

func TestResourceHandler_UpdateEmptyBody(t *testing.T) {
	r, _ := newResourceRouter(t, resource.Partners)

	w := perform(r, http.MethodPut, "/admin/3", nil, jsonHeader)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Không có dữ liệu để cập nhật", decodeBody(t, w)["message"])
}

func TestResourceHandler_UpdateMissingRow(t *testing.T) {
	r, mock := newResourceRouter(t, resource.Partners)

	mock.ExpectExec("UPDATE partners SET").WillReturnResult(sqlmock.NewResult(0, 0))

	w := perform(r, http.MethodPut, "/admin/99", jsonBody(t, map[string]any{"name": "Mới"}), jsonHeader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResourceHandler_DeleteBlockedByDependents(t *testing.T) {
	r, mock := newResourceRouter(t, resource.Categories)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE category_id = ?")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	w := perform(r, http.MethodDelete, "/admin/4", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Không thể xóa danh mục này vì có 3 sản phẩm đang sử dụng", body["message"])
	assert.Equal(t, map[string]any{"count": float64(3)}, body["data"])
}

func TestResourceHandler_Delete(t *testing.T) {
	r, mock := newResourceRouter(t, resource.Partners)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM partners WHERE id = ?")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := perform(r, http.MethodDelete, "/admin/2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Xóa đối tác thành công", decodeBody(t, w)["message"])
}

func TestResourceHandler_ChildrenInvalidParent(t *testing.T) {
	r, _ := newResourceRouter(t, resource.Categories)

	w := perform(r, http.MethodGet, "/items/parent/root", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResourceHandler_Children(t *testing.T) {
	r, mock := newResourceRouter(t, resource.Categories)

	mock.ExpectQuery("FROM categories c").
		WithArgs(int64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "parent_id"}).AddRow(int64(2), "Túi khí", int64(1)))

	w := perform(r, http.MethodGet, "/items/parent/1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["data"], 1)
}
