package routes

import (
	"campusreq_backend/internal/handlers"
	"campusreq_backend/internal/logger"
	"campusreq_backend/internal/middleware"
	"campusreq_backend/ws"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

// Options carries the pieces route registration needs besides handlers.
type Options struct {
	Auth       middleware.TokenParser
	CronSecret string
}

// RegisterRoutes wires every HTTP, SSE and WebSocket route.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	opts Options,
) {
	// streaming responses must not be buffered by the compressor
	ginRouter.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{apiPrefix + "/ws", apiPrefix + "/events"}),
	))

	ginRouter.GET("/health", appHandlers.HealthHandler.Health)

	api := ginRouter.Group(apiPrefix)
	api.GET("/health", appHandlers.HealthHandler.Health)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(opts.Auth))
	{
		appHandlers.RequestHandler.RegisterRoutes(protected)
		appHandlers.NotificationHandler.RegisterRoutes(protected)
		appHandlers.ReportHandler.RegisterRoutes(protected)
	}

	cron := ginRouter.Group("/api/cron")
	cron.Use(middleware.CronSecretMiddleware(opts.CronSecret))
	appHandlers.CronHandler.RegisterRoutes(cron)

	SetupRealtimeRoutes(protected, wsHandler)
	logger.Info("routes registered", "prefix", apiPrefix)
}
