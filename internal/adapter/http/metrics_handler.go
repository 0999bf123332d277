package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/app"
)

type MetricsHandler struct {
	handler http.Handler
}

func NewMetricsHandler(collector *app.MetricsCollector) *MetricsHandler {
	return &MetricsHandler{handler: collector.Handler()}
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	h.handler.ServeHTTP(c.Writer, c.Request)
}
