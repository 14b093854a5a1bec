package routers

import (
	"github.com/The-Promised-Neverland/estatus/internal/api/handlers"
	"github.com/The-Promised-Neverland/estatus/internal/api/middleware"
	"github.com/The-Promised-Neverland/estatus/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Handler    *handlers.Handler
	WSHandler  *handlers.WebSocketHandler
	SSEHandler *handlers.SSEHandler
	Metrics    *metrics.Metrics
	// Gatherer serves /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func NewRouter(handler *handlers.Handler, wsh *handlers.WebSocketHandler, ssh *handlers.SSEHandler, m *metrics.Metrics, g prometheus.Gatherer) *Router {
	return &Router{
		Handler:    handler,
		WSHandler:  wsh,
		SSEHandler: ssh,
		Metrics:    m,
		Gatherer:   g,
	}
}

func (rtr *Router) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorsMiddleware())
	router.Use(rtr.Metrics.Middleware())

	router.GET("/health", rtr.Handler.HealthCheck)
	if rtr.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(rtr.Gatherer, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api")
	{
		api.POST("/report", rtr.Handler.Report)
		api.POST("/login", rtr.Handler.Login)
		api.POST("/logout", rtr.Handler.Logout)
		api.GET("/config/public", rtr.Handler.PublicConfig)
		api.GET("/stream", rtr.SSEHandler.StreamHandler)

		servers := api.Group("/server")
		{
			servers.GET("/:id", rtr.Handler.GetServer)
			servers.GET("/:id/history", rtr.Handler.ServerHistory)
		}

		admin := api.Group("/admin", middleware.RequireSession(rtr.Handler.Auth))
		{
			admin.PUT("/settings/:key", rtr.Handler.UpdateSetting)
		}
	}
	router.GET("/ws", rtr.WSHandler.UpgradeHandler)

	return router
}
