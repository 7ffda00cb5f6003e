package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv убирает переменную на время теста.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "APP_ENV", "DB_DRIVER", "DATABASE_URL", "HTTP_PORT", "DB_MAX_OPEN_CONNS", "TOKEN_TTL",
		"MAX_UPLOAD_MB", "MAX_UPLOAD_FILES", "CORS_ALLOWED_ORIGINS", "MIGRATIONS_PATH", "JWT_SECRET")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.HTTPPort)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(5), cfg.MaxUploadSizeMB)
	assert.Equal(t, 10, cfg.MaxUploadFiles)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, "migrations/mysql", cfg.MigrationsDir())

	for _, param := range []string{"parseTime=true", "clientFoundRows=true", "multiStatements=true", "charset=utf8mb4"} {
		assert.True(t, strings.Contains(cfg.DatabaseURL, param), "dsn %q lacks %s", cfg.DatabaseURL, param)
	}
}

func TestLoad_MySQLURLKeepsCredentials(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DATABASE_URL", "app:secret@tcp(db:3306)/binhminh")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cfg.DatabaseURL, "app:secret@tcp(db:3306)/binhminh?"))
	assert.Contains(t, cfg.DatabaseURL, "clientFoundRows=true")
}

func TestLoad_Postgres(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "bm")
	t.Setenv("DB_PASSWORD", "p@ss")
	t.Setenv("DB_HOST", "pg")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_NAME", "site")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://bm:p%40ss@pg:5432/site?sslmode=disable", cfg.DatabaseURL)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://cachnhietbinhminh.vn")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", strings.Repeat("x", 32))
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://cachnhietbinhminh.vn, https://admin.cachnhietbinhminh.vn")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cachnhietbinhminh.vn", "https://admin.cachnhietbinhminh.vn"}, cfg.AllowedOrigins)
	assert.Equal(t, "info", cfg.LogLevel)
}
