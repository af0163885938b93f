package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotecrm/internal/config"
	domainRepo "github.com/sangkips/quotecrm/internal/domain/repository"
	"github.com/sangkips/quotecrm/internal/infrastructure/metrics"
	"github.com/sangkips/quotecrm/internal/presentation/http/dto/response"
	"github.com/sangkips/quotecrm/internal/presentation/http/handler"
	"github.com/sangkips/quotecrm/internal/presentation/http/middleware"
	"github.com/sangkips/quotecrm/pkg/utils"
)

// PublicPrefix roots every share-link route.
const PublicPrefix = "/api/v1/public"

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Settings  *handler.SettingsHandler
	Template  *handler.TemplateHandler
	Quote     *handler.QuoteHandler
	Inquiry   *handler.InquiryHandler
	Client    *handler.ClientHandler
	Editor    *handler.EditorHandler
	Dashboard *handler.DashboardHandler
	Sync      *handler.SyncHandler
	Public    *handler.PublicHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
}

// Setup creates the Gin router and registers all routes. The returned
// func stops the rate limiters' cleanup loops and is safe to call twice.
func Setup(h *Handlers, deps *Deps) (*gin.Engine, func()) {
	router := gin.New()
	response.UseJSONFieldNames()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger, deps.Metrics))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS, PublicPrefix))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	if deps.Cfg.Metrics.Enabled && deps.Metrics != nil {
		router.GET(deps.Cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
	}

	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo:   deps.IdempotencyRepo,
		Logger: deps.Logger,
	})

	visitorLimiter := middleware.NewRateLimiter(middleware.PerWindow(
		deps.Cfg.RateLimit.PublicRequests, deps.Cfg.RateLimit.Duration, middleware.VisitorKey))
	tenantLimiter := middleware.NewRateLimiter(middleware.PerWindow(
		deps.Cfg.RateLimit.Requests, deps.Cfg.RateLimit.Duration, middleware.TenantKey))

	v1 := router.Group("/api/v1")
	{
		// Share-link visitors: always the public scope of ?uid=
		public := router.Group(PublicPrefix)
		public.Use(middleware.ShareLinkTenant())
		public.Use(visitorLimiter.Middleware())
		registerPublicRoutes(public, h, idempotency)

		// The live stream serves both owners and visitors
		v1.GET("/sync/stream",
			middleware.OptionalAuthMiddleware(deps.JWTManager),
			middleware.ShareLinkTenant(),
			h.Sync.Stream)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		protected.Use(middleware.RequireOwner())
		protected.Use(tenantLimiter.Middleware())
		protected.Use(idempotency)

		registerProtectedRoutes(protected, h)
	}

	stop := func() {
		visitorLimiter.Stop()
		tenantLimiter.Stop()
	}
	return router, stop
}

func registerPublicRoutes(public *gin.RouterGroup, h *Handlers, idempotency gin.HandlerFunc) {
	public.GET("/catalog", h.Public.Catalog)
	public.GET("/profile", h.Settings.PublicProfile)
	public.GET("/stream", h.Sync.Stream)
	public.POST("/inquiries", idempotency, h.Public.SubmitInquiry)
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/settings", h.Settings.GetSettings)
	protected.PUT("/settings", h.Settings.UpdateSettings)

	protected.GET("/dashboard", h.Dashboard.GetStats)

	registerTemplateRoutes(protected, h)
	registerInquiryRoutes(protected, h)
	registerQuoteRoutes(protected, h)
	registerClientRoutes(protected, h)
	registerEditorRoutes(protected, h)
	registerExportRoutes(protected, h)
}

func registerTemplateRoutes(protected *gin.RouterGroup, h *Handlers) {
	templates := protected.Group("/templates")
	{
		templates.GET("", h.Template.List)
		templates.POST("", h.Template.Create)
		templates.POST("/reset", h.Template.Reset)
		templates.GET("/:id", h.Template.Get)
		templates.PUT("/:id", h.Template.Update)
		templates.DELETE("/:id", h.Template.Delete)
	}
}

func registerInquiryRoutes(protected *gin.RouterGroup, h *Handlers) {
	inquiries := protected.Group("/inquiries")
	{
		inquiries.GET("", h.Inquiry.List)
		inquiries.GET("/:id", h.Inquiry.Get)
		inquiries.PUT("/:id", h.Inquiry.Update)
		inquiries.PATCH("/:id/status", h.Inquiry.UpdateStatus)
		inquiries.PATCH("/:id/score", h.Inquiry.Rate)
		inquiries.POST("/:id/load", h.Inquiry.Load)
		inquiries.DELETE("/:id", h.Inquiry.Delete)
	}
}

func registerQuoteRoutes(protected *gin.RouterGroup, h *Handlers) {
	quotes := protected.Group("/quotes")
	{
		quotes.GET("", h.Quote.List)
		quotes.GET("/:id", h.Quote.Get)
		quotes.GET("/:id/pdf", h.Quote.PDF)
		quotes.POST("/:id/archive", h.Quote.Archive)
		quotes.POST("/:id/load", h.Quote.Load)
		quotes.DELETE("/:id", h.Quote.Delete)
	}
}

func registerClientRoutes(protected *gin.RouterGroup, h *Handlers) {
	clients := protected.Group("/clients")
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.POST("/from-draft", h.Client.SaveFromDraft)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.POST("/:id/apply", h.Client.Apply)
		clients.DELETE("/:id", h.Client.Delete)
	}
}

func registerEditorRoutes(protected *gin.RouterGroup, h *Handlers) {
	draft := protected.Group("/editor")
	{
		draft.GET("", h.Editor.Get)
		draft.POST("/ops", h.Editor.Apply)
		draft.POST("/save", h.Editor.Save)
		draft.POST("/reset", h.Editor.Reset)
		draft.GET("/preview", h.Editor.Preview)
	}
}

func registerExportRoutes(protected *gin.RouterGroup, h *Handlers) {
	exports := protected.Group("/exports")
	{
		exports.GET("/quotes", h.Dashboard.ExportQuotes)
		exports.GET("/inquiries", h.Dashboard.ExportInquiries)
	}
}
