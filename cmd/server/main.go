package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/binhminh-backend/internal/config"
	"github.com/ignatzorin/binhminh-backend/internal/db"
	"github.com/ignatzorin/binhminh-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/binhminh-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/binhminh-backend/internal/http/router"
	"github.com/ignatzorin/binhminh-backend/internal/logger"
	"github.com/ignatzorin/binhminh-backend/internal/repository"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/service"
	"github.com/ignatzorin/binhminh-backend/internal/storage"
	"github.com/ignatzorin/binhminh-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		logger.Log.Fatalf("main: ошибка инициализации логгера: %v", err)
	}
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}
	defer logger.Close()

	// Подключение к базе и миграции.
	dbConn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	applied, err := db.RunMigrations(ctx, dbConn, cfg.MigrationsDir())
	if err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}
	if len(applied) > 0 {
		logger.Log.WithField("migrations", applied).Info("миграции применены")
	}

	gateway := repository.NewGateway(dbConn)
	registry := resource.DefaultRegistry()

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.UploadDir, cfg.MaxUploadSizeMB)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Вебсокеты: события для админки.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	// Сервисы.
	resourceService := func(name string) *service.ResourceService {
		return service.NewResourceService(registry.MustGet(name), gateway)
	}
	contactService := service.NewContactService(registry.MustGet(resource.Contacts), gateway, hub)
	reviewService := service.NewReviewService(registry.MustGet(resource.Testimonials), gateway, hub)
	settingsService := service.NewSettingsService(registry.MustGet(resource.Settings), gateway)
	adminService := service.NewAdminService(registry.MustGet(resource.AdminUsers), gateway, tokenManager)
	dashboardService := service.NewDashboardService(gateway)

	// HTTP хэндлеры.
	h := httpRouter.Handlers{
		Categories:   httpHandlers.NewResourceHandler(resourceService(resource.Categories)),
		Products:     httpHandlers.NewResourceHandler(resourceService(resource.Products)),
		Services:     httpHandlers.NewResourceHandler(resourceService(resource.Services)),
		News:         httpHandlers.NewResourceHandler(resourceService(resource.News)),
		Projects:     httpHandlers.NewResourceHandler(resourceService(resource.Projects)),
		Partners:     httpHandlers.NewResourceHandler(resourceService(resource.Partners)),
		Testimonials: httpHandlers.NewReviewHandler(reviewService),
		Contacts:     httpHandlers.NewContactHandler(contactService),
		Settings:     httpHandlers.NewSettingsHandler(settingsService),
		Admin:        httpHandlers.NewAdminHandler(adminService, dashboardService),
		Upload:       httpHandlers.NewUploadHandler(fileStorage, cfg.MaxUploadFiles),
		Health:       httpHandlers.NewHealthHandler(dbConn),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
	}

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, h, tokenManager)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	goroutine.SafeGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.WithFields(logrus.Fields{
		"port":   cfg.HTTPPort,
		"env":    cfg.Env,
		"driver": cfg.DBDriver,
	}).Info("сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
	logger.Log.Info("сервер остановлен")
}

func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.WithError(err).Warn("main: ошибка закрытия соединения с базой")
	}
}
