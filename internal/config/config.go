package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config хранит все параметры запуска приложения.
type Config struct {
	Env             string
	HTTPPort        string
	LogLevel        string
	LogFile         string
	DBDriver        string
	DatabaseURL     string
	DBMaxOpenConns  int
	JWTSecret       string
	TokenTTL        time.Duration
	UploadDir       string
	MaxUploadSizeMB int64
	MaxUploadFiles  int
	MigrationsPath  string
	AllowedOrigins  []string
	RateLimitLimit  int64
	RateLimitPeriod time.Duration
}

// IsProduction — запущено ли приложение в production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// MigrationsDir — каталог миграций для выбранного драйвера.
func (c *Config) MigrationsDir() string {
	return filepath.Join(c.MigrationsPath, c.DBDriver)
}

// Load читает переменные окружения и возвращает готовую конфигурацию.
func Load() (*Config, error) {
	// Загружаем .env только если он существует, иначе используем системные переменные.
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("config: .env не найден, используем переменные окружения: %v", err)
	}

	env := getEnv("APP_ENV", "development")
	driver := strings.ToLower(getEnv("DB_DRIVER", DriverMySQL))
	if driver != DriverMySQL && driver != DriverPostgres {
		return nil, fmt.Errorf("config: неизвестный DB_DRIVER %q", driver)
	}

	databaseURL, err := getDatabaseURL(driver)
	if err != nil {
		return nil, err
	}

	defaultLevel := "debug"
	if env == "production" {
		defaultLevel = "info"
	}

	cfg := &Config{
		Env:            env,
		HTTPPort:       getEnv("HTTP_PORT", "5000"),
		LogLevel:       getEnv("LOG_LEVEL", defaultLevel),
		LogFile:        getEnv("LOG_FILE", ""),
		DBDriver:       driver,
		DatabaseURL:    databaseURL,
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if env == "production" {
		if len(jwtSecret) < 32 {
			return nil, fmt.Errorf("config: JWT_SECRET обязателен и должен быть не менее 32 символов в production")
		}
	} else if jwtSecret == "" {
		jwtSecret = "binhminh-development-secret-change-in-production"
		log.Printf("config: WARNING - используется дефолтный JWT_SECRET, измените в production!")
	}
	cfg.JWTSecret = jwtSecret

	originsStr := getEnv("CORS_ALLOWED_ORIGINS", "")
	if originsStr == "" {
		if env == "production" {
			return nil, fmt.Errorf("config: CORS_ALLOWED_ORIGINS обязателен в production")
		}
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	} else {
		for _, origin := range strings.Split(originsStr, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	cfg.DBMaxOpenConns = int(mustParseInt64(getEnv("DB_MAX_OPEN_CONNS", "10")))
	cfg.TokenTTL = mustParseDuration(getEnv("TOKEN_TTL", "168h"))
	cfg.MaxUploadSizeMB = mustParseInt64(getEnv("MAX_UPLOAD_MB", "5"))
	cfg.MaxUploadFiles = int(mustParseInt64(getEnv("MAX_UPLOAD_FILES", "10")))

	cfg.RateLimitLimit = mustParseInt64(getEnv("RATE_LIMIT_LIMIT", "10"))
	cfg.RateLimitPeriod = mustParseDuration(getEnv("RATE_LIMIT_PERIOD", "1m"))

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или дефолт.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getDatabaseURL возвращает DSN либо из DATABASE_URL, либо собирает из DB_* переменных.
func getDatabaseURL(driver string) (string, error) {
	raw := getEnv("DATABASE_URL", "")

	if driver == DriverPostgres {
		if raw != "" {
			return raw, nil
		}
		userInfo := url.UserPassword(getEnv("DB_USER", "postgres"), getEnv("DB_PASSWORD", ""))
		return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=disable",
			userInfo.String(),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "cachnhiet_binhminh")), nil
	}

	var mc *mysql.Config
	if raw != "" {
		parsed, err := mysql.ParseDSN(raw)
		if err != nil {
			return "", fmt.Errorf("config: некорректный DATABASE_URL: %w", err)
		}
		mc = parsed
	} else {
		mc = mysql.NewConfig()
		mc.User = getEnv("DB_USER", "root")
		mc.Passwd = getEnv("DB_PASSWORD", "")
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(getEnv("DB_HOST", "localhost"), getEnv("DB_PORT", "3306"))
		mc.DBName = getEnv("DB_NAME", "cachnhiet_binhminh")
	}
	return MySQLDSN(mc), nil
}

// MySQLDSN добавляет обязательные параметры: время как time.Time, число
// совпавших строк в UPDATE, несколько выражений в миграциях, utf8mb4.
func MySQLDSN(mc *mysql.Config) string {
	mc.ParseTime = true
	mc.ClientFoundRows = true
	mc.MultiStatements = true
	if mc.Params == nil {
		mc.Params = map[string]string{}
	}
	mc.Params["charset"] = "utf8mb4"
	return mc.FormatDSN()
}

// mustParseDuration безопасно парсит строку в duration.
func mustParseDuration(v string) time.Duration {
	dur, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: не удалось распарсить длительность %q: %v", v, err)
	}
	return dur
}

// mustParseInt64 безопасно парсит строку в int64.
func mustParseInt64(v string) int64 {
	num, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("config: не удалось распарсить число %q: %v", v, err)
	}
	return num
}
