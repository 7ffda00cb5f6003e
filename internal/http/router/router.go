package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ignatzorin/binhminh-backend/internal/config"
	"github.com/ignatzorin/binhminh-backend/internal/http/handlers"
	"github.com/ignatzorin/binhminh-backend/internal/http/middleware"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/service"
	"github.com/ignatzorin/binhminh-backend/internal/storage"
)

// loginRateLimit — отдельный, более строгий лимит на вход в админку.
const loginRateLimit = 5

// Handlers — все хэндлеры API.
type Handlers struct {
	Categories   *handlers.ResourceHandler
	Products     *handlers.ResourceHandler
	Services     *handlers.ResourceHandler
	News         *handlers.ResourceHandler
	Projects     *handlers.ResourceHandler
	Partners     *handlers.ResourceHandler
	Testimonials *handlers.ReviewHandler
	Contacts     *handlers.ContactHandler
	Settings     *handlers.SettingsHandler
	Admin        *handlers.AdminHandler
	Upload       *handlers.UploadHandler
	Health       *handlers.HealthHandler
	WS           *handlers.WSHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokenManager *service.TokenManager) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.NoRoute(middleware.NoRoute)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static(storage.PublicPrefix, cfg.UploadDir)

	auth := middleware.AuthMiddleware(tokenManager)
	byID := middleware.IDParam("id")
	publicWrite := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	api := r.Group("/api")
	api.GET("/health", h.Health.Health)

	// Категории
	categories := api.Group("/categories")
	{
		categories.GET("", h.Categories.List)
		categories.GET("/parent/:parentId", h.Categories.Children)
		categories.GET("/:slug", h.Categories.GetBySlug)

		admin := categories.Group("/admin", auth)
		admin.GET("/list/all", h.Categories.AdminList)
		admin.POST("/create", h.Categories.Create)
		mountAdmin(admin, h.Categories, byID)
	}

	// Товары
	products := api.Group("/products")
	{
		products.GET("", h.Products.List)
		products.GET("/featured-in-header", h.Products.FeaturedInHeader)
		products.GET("/:slug", h.Products.GetBySlug)
		mountAdmin(products.Group("/admin", auth), h.Products, byID)
	}

	services := api.Group("/services")
	{
		services.GET("", h.Services.List)
		services.GET("/:slug", h.Services.GetBySlug)

		admin := services.Group("/admin", auth)
		admin.POST("/create", h.Services.Create)
		mountAdmin(admin, h.Services, byID)
	}

	news := api.Group("/news")
	{
		news.GET("", h.News.List)
		news.GET("/:slug", h.News.GetBySlug)
		mountAdmin(news.Group("/admin", auth), h.News, byID)
	}

	projects := api.Group("/projects")
	{
		projects.GET("", h.Projects.List)
		projects.GET("/:slug", h.Projects.GetBySlug)
		mountAdmin(projects.Group("/admin", auth), h.Projects, byID)
	}

	partners := api.Group("/partners")
	{
		partners.GET("", h.Partners.List)
		mountAdmin(partners.Group("/admin", auth), h.Partners, byID)
	}

	testimonials := api.Group("/testimonials")
	{
		testimonials.GET("", h.Testimonials.List)
		testimonials.POST("", publicWrite, h.Testimonials.Submit)
		mountAdmin(testimonials.Group("/admin", auth), h.Testimonials.ResourceHandler, byID)
	}

	// Заявки с формы контактов
	contact := api.Group("/contact")
	{
		contact.POST("/submit", publicWrite, h.Contacts.Submit)

		admin := contact.Group("/admin", auth)
		admin.GET("/list", h.Contacts.AdminList)
		admin.GET("/unread-count", h.Contacts.UnreadCount)
		admin.GET("/stats/summary", h.Contacts.Stats)
		admin.GET("/:id", byID, h.Contacts.Open)
		admin.PUT("/:id/status", byID, h.Contacts.UpdateStatus)
		admin.DELETE("/:id", byID, h.Contacts.Delete)
	}

	settings := api.Group("/settings")
	{
		settings.GET("", h.Settings.All)
		settings.GET("/:key", h.Settings.Get)
		settings.PUT("/admin/:key", auth, h.Settings.Upsert)
	}

	adminGroup := api.Group("/admin")
	{
		adminGroup.POST("/login", middleware.RateLimitMiddleware(loginRateLimit, cfg.RateLimitPeriod), h.Admin.Login)
		// токен передаётся в query, проверяет сам хэндлер
		adminGroup.GET("/ws", h.WS.Handle)

		protected := adminGroup.Group("", auth)
		protected.GET("/me", h.Admin.Me)
		protected.GET("/dashboard/stats", h.Admin.DashboardStats)

		users := protected.Group("/users", middleware.RequireRole(resource.RoleAdmin))
		users.GET("", h.Admin.AdminList)
		users.GET("/:id", byID, h.Admin.GetByID)
		users.POST("", h.Admin.CreateUser)
		users.POST("/create", h.Admin.CreateUser)
		users.PUT("/:id", byID, h.Admin.UpdateUser)
		users.DELETE("/:id", byID, h.Admin.DeleteUser)
	}

	upload := api.Group("/upload", auth)
	{
		upload.POST("/single", h.Upload.Single)
		upload.POST("/multiple", h.Upload.Multiple)
	}

	return r
}

// mountAdmin регистрирует типовые маршруты админки сущности.
func mountAdmin(g *gin.RouterGroup, h *handlers.ResourceHandler, byID gin.HandlerFunc) {
	g.GET("/list", h.AdminList)
	g.GET("/:id", byID, h.GetByID)
	g.POST("", h.Create)
	g.PUT("/:id", byID, h.Update)
	g.DELETE("/:id", byID, h.Delete)
}
