package handlers

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/service"
)

func newSettingsRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gw, mock := newMockGateway(t)
	h := NewSettingsHandler(service.NewSettingsService(testRegistry.MustGet(resource.Settings), gw))

	r := gin.New()
	r.GET("/settings", h.All)
	r.GET("/settings/:key", h.Get)
	r.PUT("/settings/admin/:key", h.Upsert)
	return r, mock
}

func TestSettingsHandler_AllAsMap(t *testing.T) {
	r, mock := newSettingsRouter(t)

	mock.ExpectQuery("FROM settings st").
		WillReturnRows(sqlmock.NewRows([]string{"id", "setting_key", "setting_value"}).
			AddRow(int64(1), "hotline", "0901 234 567").
			AddRow(int64(2), "company_name", "Cách Nhiệt Bình Minh"))

	w := perform(r, http.MethodGet, "/settings", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{
		"hotline":      "0901 234 567",
		"company_name": "Cách Nhiệt Bình Minh",
	}, decodeBody(t, w)["data"])
}

func TestSettingsHandler_GetMissing(t *testing.T) {
	r, mock := newSettingsRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE st.setting_key = ? LIMIT 1")).
		WithArgs("fax").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := perform(r, http.MethodGet, "/settings/fax", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Không tìm thấy cài đặt", decodeBody(t, w)["message"])
}

func TestSettingsHandler_Upsert(t *testing.T) {
	r, mock := newSettingsRouter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO settings (setting_key, setting_value) VALUES (?, ?) ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value), updated_at = CURRENT_TIMESTAMP")).
		WithArgs("hotline", "1900 1234").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := perform(r, http.MethodPut, "/settings/admin/hotline", jsonBody(t, map[string]any{"setting_value": "1900 1234"}), jsonHeader)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cập nhật cài đặt thành công", decodeBody(t, w)["message"])
}
