package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/binhminh-backend/internal/config"
	"github.com/ignatzorin/binhminh-backend/internal/http/handlers"
	"github.com/ignatzorin/binhminh-backend/internal/repository"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/service"
	"github.com/ignatzorin/binhminh-backend/internal/storage"
	"github.com/ignatzorin/binhminh-backend/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEngine(t *testing.T) (*gin.Engine, *service.TokenManager, string) {
	t.Helper()
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	uploadDir := t.TempDir()
	cfg := &config.Config{
		Env:             "test",
		UploadDir:       uploadDir,
		AllowedOrigins:  []string{"http://localhost:3000"},
		RateLimitLimit:  2,
		RateLimitPeriod: time.Minute,
	}

	conn := sqlx.NewDb(mockDB, "mysql")
	gw := repository.NewGateway(conn)
	reg := resource.DefaultRegistry()
	tokens := service.NewTokenManager("router-secret", time.Hour)
	hub := ws.NewHub()
	fs, err := storage.NewFileStorage(uploadDir, 1)
	require.NoError(t, err)

	res := func(name string) *handlers.ResourceHandler {
		return handlers.NewResourceHandler(service.NewResourceService(reg.MustGet(name), gw))
	}
	h := Handlers{
		Categories:   res(resource.Categories),
		Products:     res(resource.Products),
		Services:     res(resource.Services),
		News:         res(resource.News),
		Projects:     res(resource.Projects),
		Partners:     res(resource.Partners),
		Testimonials: handlers.NewReviewHandler(service.NewReviewService(reg.MustGet(resource.Testimonials), gw, hub)),
		Contacts:     handlers.NewContactHandler(service.NewContactService(reg.MustGet(resource.Contacts), gw, hub)),
		Settings:     handlers.NewSettingsHandler(service.NewSettingsService(reg.MustGet(resource.Settings), gw)),
		Admin: handlers.NewAdminHandler(
			service.NewAdminService(reg.MustGet(resource.AdminUsers), gw, tokens),
			service.NewDashboardService(gw),
		),
		Upload: handlers.NewUploadHandler(fs, 10),
		Health: handlers.NewHealthHandler(conn),
		WS:     handlers.NewWSHandler(hub, tokens, cfg.AllowedOrigins),
	}
	return SetupRouter(cfg, h, tokens), tokens, uploadDir
}

func serve(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetupRouter_UnknownRoute(t *testing.T) {
	r, _, _ := newTestEngine(t)

	w := serve(r, http.MethodGet, "/api/unknown", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "API endpoint not found", body["message"])
}

func TestSetupRouter_AdminRoutesRequireToken(t *testing.T) {
	r, _, _ := newTestEngine(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/products/admin/list"},
		{http.MethodGet, "/api/categories/admin/list/all"},
		{http.MethodPost, "/api/services/admin/create"},
		{http.MethodPut, "/api/news/admin/1"},
		{http.MethodDelete, "/api/projects/admin/1"},
		{http.MethodGet, "/api/contact/admin/unread-count"},
		{http.MethodPut, "/api/settings/admin/hotline"},
		{http.MethodGet, "/api/admin/me"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodPost, "/api/upload/single"},
	}
	for _, p := range paths {
		w := serve(r, p.method, p.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}
}

func TestSetupRouter_UsersRequireAdminRole(t *testing.T) {
	r, tokens, _ := newTestEngine(t)

	token, _, err := tokens.Issue(7, "bientap", resource.RoleEditor)
	require.NoError(t, err)

	w := serve(r, http.MethodGet, "/api/admin/users", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetupRouter_ServesUploads(t *testing.T) {
	r, _, dir := newTestEngine(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.txt"), []byte("ok"), 0o644))

	w := serve(r, http.MethodGet, "/uploads/logo.txt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestSetupRouter_MetricsEndpoint(t *testing.T) {
	r, _, _ := newTestEngine(t)
	serve(r, http.MethodGet, "/api/unknown", nil)

	w := serve(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestSetupRouter_CORSPreflight(t *testing.T) {
	r, _, _ := newTestEngine(t)

	w := serve(r, http.MethodOptions, "/api/products", http.Header{"Origin": {"http://localhost:3000"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
