package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/binhminh-backend/internal/http/middleware"
	"github.com/ignatzorin/binhminh-backend/internal/repository"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
)

var testRegistry = resource.DefaultRegistry()

func init() {
	gin.SetMode(gin.TestMode)
}

// newMockGateway поднимает настоящий Gateway поверх sqlmock.
func newMockGateway(t *testing.T) (*repository.Gateway, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mockDB.Close()
	})
	return repository.NewGateway(sqlx.NewDb(mockDB, "mysql")), mock
}

// asAdmin подставляет в контекст администратора, как это делает AuthMiddleware.
func asAdmin(id int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, id)
		c.Set(middleware.ContextRoleKey, role)
		c.Next()
	}
}

func perform(r http.Handler, method, path string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var jsonHeader = http.Header{"Content-Type": {"application/json"}}
