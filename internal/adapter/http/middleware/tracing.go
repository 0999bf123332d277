package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "devmarkt-templates"

func Tracing() gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
