package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/calendar-scolar-api/internal/middleware"
	"github.com/noah-isme/calendar-scolar-api/internal/models"
	"github.com/noah-isme/calendar-scolar-api/internal/service"
	"github.com/noah-isme/calendar-scolar-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/calendar-scolar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/calendar-scolar-api/pkg/middleware/requestid"
)

const feedMaxAge = time.Hour

// RouterConfig carries the HTTP surface settings.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	MetricsEnabled bool
}

// Handlers bundles every HTTP handler mounted by the router.
type Handlers struct {
	Feeds       *FeedHandler
	Public      *PublicHandler
	Events      *EventHandler
	Promos      *PromoHandler
	Counties    *CountyHandler
	Settings    *SettingsHandler
	Subscribers *SubscriberHandler
	Ops         *MetricsHandler
}

// RouterDeps is what NewRouter needs besides the handlers.
type RouterDeps struct {
	Config   RouterConfig
	Logger   *zap.Logger
	Metrics  *service.MetricsService
	Tokens   middleware.TokenValidator
	Settings middleware.SettingsReader
}

// NewRouter mounts the public feeds, public JSON endpoints and the admin API.
func NewRouter(deps RouterDeps, h Handlers) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	probes := []string{"/health", "/ready", "/metrics"}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger, probes...))
	r.Use(corsmiddleware.New(deps.Config.AllowedOrigins))
	if deps.Config.MetricsEnabled {
		r.Use(middleware.Metrics(deps.Metrics, probes...))
	}

	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	if deps.Config.MetricsEnabled {
		r.GET("/metrics", h.Ops.Prometheus)
	}

	api := r.Group("/api")

	calendar := api.Group("/calendar")
	calendar.GET("", middleware.PublicCache(feedMaxAge), h.Feeds.National)
	calendar.GET("/premium/:token", middleware.PrivateCache(feedMaxAge), h.Feeds.Premium)
	county := calendar.Group("/county/:slug")
	county.GET("", middleware.NoCache(true), h.Feeds.County)
	county.GET("/export.csv", h.Feeds.CountyExport(service.FormatCSV))
	county.GET("/export.pdf", h.Feeds.CountyExport(service.FormatPDF))

	public := api.Group("")
	if deps.Settings != nil {
		public.Use(middleware.Maintenance(deps.Settings, deps.Logger))
	}
	public.GET("/counties", h.Public.ListCounties)
	public.GET("/counties/:slug", h.Public.GetCounty)
	public.GET("/promos/banners", h.Public.Banners)
	public.POST("/promos/:id/click", h.Public.PromoClick)
	public.POST("/track-subscription-action", h.Public.TrackSubscriptionAction)

	prefix := deps.Config.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	admin := r.Group(prefix + "/admin")
	admin.Use(middleware.JWT(deps.Tokens), middleware.Audit(deps.Logger))

	staff := admin.Group("", middleware.RequireRoles(models.RoleAdmin, models.RoleEditor))
	staff.GET("/me", Me)
	staff.GET("/events", h.Events.List)
	staff.GET("/events/:id", h.Events.Get)
	staff.POST("/events", h.Events.Create)
	staff.PUT("/events/:id", h.Events.Update)
	staff.PATCH("/events/:id/toggle", h.Events.Toggle)
	staff.GET("/promos", h.Promos.List)
	staff.GET("/promos/:id", h.Promos.Get)
	staff.POST("/promos", h.Promos.Create)
	staff.PUT("/promos/:id", h.Promos.Update)
	staff.PATCH("/promos/:id/toggle", h.Promos.Toggle)

	owner := admin.Group("", middleware.RequireRoles(models.RoleAdmin))
	owner.DELETE("/events/:id", h.Events.Delete)
	owner.DELETE("/promos/:id", h.Promos.Delete)

	owner.GET("/counties", h.Counties.List)
	owner.GET("/counties/:slug", h.Counties.Get)
	owner.PUT("/counties/:id", h.Counties.Update)
	owner.PATCH("/counties/:id/toggle", h.Counties.Toggle)
	owner.GET("/groups", h.Counties.ListGroups)
	owner.GET("/groups/:id", h.Counties.GetGroup)
	owner.PUT("/groups/:id", h.Counties.UpdateGroup)
	owner.GET("/groups/:id/periods", h.Counties.GroupPeriods)
	owner.POST("/periods", h.Counties.CreatePeriod)
	owner.PUT("/periods/:id", h.Counties.UpdatePeriod)
	owner.DELETE("/periods/:id", h.Counties.DeletePeriod)

	owner.GET("/settings", h.Settings.Get)
	owner.PUT("/settings", h.Settings.Update)
	owner.POST("/cache/invalidate", h.Settings.InvalidateCache)

	owner.GET("/subscribers", h.Subscribers.Subscriptions)
	owner.GET("/subscribers/stats", h.Subscribers.Stats)
	owner.GET("/subscribers/actions", h.Subscribers.Actions)
	owner.POST("/premium-links", h.Subscribers.PremiumLink)
	owner.GET("/metrics", h.Ops.Snapshot)

	return r
}
