package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/http/middleware"
)

type RouterDeps struct {
	TemplateHandler  *TemplateHandler
	EventsHandler    *EventsHandler
	AuditHandler     *AuditHandler
	HealthHandler    *HealthHandler
	MetricsHandler   *MetricsHandler
	WebSocketHandler *WebSocketHandler
	RateLimit        float64
	Logger           *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Tracing())
	r.Use(middleware.Logging(deps.Logger))

	r.GET("/health", deps.HealthHandler.Liveness)
	r.GET("/health/ready", deps.HealthHandler.Readiness)
	r.GET("/metrics", deps.MetricsHandler.GetMetrics)

	templates := r.Group("/template")
	{
		// Streams are long lived and stay outside the rate limit.
		templates.GET("/events", deps.EventsHandler.Stream)
		templates.GET("/events/ws", deps.WebSocketHandler.Handle)

		limited := templates.Group("")
		limited.Use(middleware.RateLimit(deps.RateLimit))
		limited.GET("", deps.TemplateHandler.List)
		limited.POST("", deps.TemplateHandler.Create)
		limited.PUT("", deps.TemplateHandler.Replace)
		limited.GET("/:name", deps.TemplateHandler.Get)
		limited.DELETE("/:name", deps.TemplateHandler.Delete)
		limited.GET("/:name/audit", deps.AuditHandler.History)
	}

	return r
}
