package api

import (
	"net/http"
	"time"

	"geolens/internal/api/middleware"
	"geolens/internal/api/registry"
	"geolens/internal/handlers"
	"geolens/internal/routes"
	"geolens/internal/services"
	"geolens/internal/tasks"
	"geolens/internal/tasks/rate"

	_ "geolens/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "GeoLens API")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server is running
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	routes.SetupAuthRoutes(s.echo, s.db, s.config)

	relationService := services.NewRelationService(s.db)
	contentService := services.NewContentService(s.db, relationService)
	directoryService := services.NewDirectoryService(s.db)

	taskClient := tasks.NewTaskClient(s.config.Redis.Addr, s.config.Redis.Username, s.config.Redis.Password, s.config.Redis.DB)
	requestLimiter := rate.NewQueueRateLimiter(taskClient.GetRedisClient(), rate.QueueConfig{
		Name: "subscription_requests",
		RateLimit: rate.RateLimit{
			Window:  time.Minute,
			MaxJobs: 10,
		},
	})

	contentHandler := handlers.NewContentHandler(s.db, contentService)
	eventHandler := handlers.NewEventHandler(s.db, contentService)
	subscriptionHandler := handlers.NewSubscriptionHandler(s.db, relationService, requestLimiter)
	directoryHandler := handlers.NewDirectoryHandler(s.db, directoryService)
	layerHandler := handlers.NewLayerHandler(s.db)
	tenantHandler := handlers.NewTenantHandler(s.db)

	auth := middleware.NewAuthMiddleware(s.config.JWT.Secret)

	// API v1 group
	api := s.echo.Group("/api/v1")

	// Browse surface: anonymous viewers get the locked projection, so these
	// routes only need optional auth.
	browse := api.Group("", auth.Optional())
	browse.GET("/layers", layerHandler.List)
	browse.GET("/content", contentHandler.Query)
	browse.GET("/events", eventHandler.Query)

	// Everything below requires a valid principal.
	authed := api.Group("", auth.Required())

	subscriptions := authed.Group("/subscriptions")
	subscriptions.POST("/request", subscriptionHandler.Request)
	subscriptions.GET("/mine", subscriptionHandler.ListMine)
	subscriptions.GET("/my-tenants", subscriptionHandler.MyTenants)
	subscriptions.POST("/:id/cancel", subscriptionHandler.Cancel)
	subscriptions.GET("/owner/requests", subscriptionHandler.OwnerRequests, middleware.RequireAnalyst())
	subscriptions.POST("/:id/decide", subscriptionHandler.Decide, middleware.RequireAnalyst())

	authed.GET("/analysts", directoryHandler.Eligible)

	// Analyst authoring surface
	authoring := authed.Group("", middleware.RequireAnalyst())
	authoring.GET("/tenants/me", tenantHandler.GetMine)
	authoring.PUT("/tenants/me", tenantHandler.UpdateMine)
	authoring.GET("/content/me", contentHandler.ListMine)
	authoring.POST("/content/me", contentHandler.Create)
	authoring.PUT("/content/me/:id", contentHandler.Update)
	authoring.DELETE("/content/me/:id", contentHandler.Delete)
	authoring.GET("/events/me", eventHandler.ListMine)
	authoring.POST("/events/me", eventHandler.Create)
	authoring.PUT("/events/me/:id", eventHandler.Update)
	authoring.DELETE("/events/me/:id", eventHandler.Delete)

	// Read-only tenant lookup
	registry.RegisterCRUDRoutes(authed, s.db)

	routes.SetupUploadRoutes(authoring, s.config)
}
