package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const dialTimeout = 3 * time.Second

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db           Pinger
	kafkaBrokers []string
}

// NewHealthHandler checks the first Kafka broker on readiness when brokers
// are configured.
func NewHealthHandler(db Pinger, kafkaBrokers []string) *HealthHandler {
	return &HealthHandler{db: db, kafkaBrokers: kafkaBrokers}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := make(map[string]string)

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		checks["database"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
		return
	}
	checks["database"] = "healthy"

	if len(h.kafkaBrokers) > 0 {
		broker := h.kafkaBrokers[0]
		if !strings.Contains(broker, ":") {
			broker = broker + ":9092"
		}
		dialer := net.Dialer{Timeout: dialTimeout}
		conn, err := dialer.DialContext(c.Request.Context(), "tcp", broker)
		if err != nil {
			checks["kafka"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
			return
		}
		_ = conn.Close()
		checks["kafka"] = "healthy"
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
