package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		wantCode int
		wantDB   string
	}{
		{name: "healthy", wantCode: http.StatusOK, wantDB: "healthy"},
		{name: "database down", pingErr: errors.New("dial tcp: refused"), wantCode: http.StatusServiceUnavailable, wantDB: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
			require.NoError(t, err)
			defer mockDB.Close()
			mock.ExpectPing().WillReturnError(tt.pingErr)

			r := gin.New()
			r.GET("/health", NewHealthHandler(mockDB).Health)

			w := perform(r, http.MethodGet, "/health", nil, nil)
			require.Equal(t, tt.wantCode, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, "Cách Nhiệt Bình Minh API is running", body["message"])
			assert.Equal(t, tt.wantDB, body["checks"].(map[string]any)["database"])
			assert.NotContains(t, w.Body.String(), "refused")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
