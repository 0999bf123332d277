package http

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/events"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/port"
	"github.com/Taucher2003-Bot/devmarkt-backend/pkg/logger"
)

const defaultHeartbeat = 15 * time.Second

type EventsHandler struct {
	subscriber port.EventSubscriber
	heartbeat  time.Duration
	logger     *zap.Logger
}

func NewEventsHandler(subscriber port.EventSubscriber, heartbeat time.Duration, log *zap.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &EventsHandler{subscriber: subscriber, heartbeat: heartbeat, logger: log}
}

// Stream keeps the connection open and writes one server-sent event per
// template change until the client disconnects. Past events are not replayed.
func (h *EventsHandler) Stream(c *gin.Context) {
	sub := h.subscriber.Subscribe()
	defer sub.Close()

	ctx := c.Request.Context()
	log := logger.FromContext(ctx, h.logger)
	log.Debug("event stream opened", zap.String("client_ip", c.ClientIP()))
	defer log.Debug("event stream closed")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			c.Render(-1, sse.Event{
				Event: string(event.Kind),
				Id:    event.ID.String(),
				Data:  events.NewMessage(event),
			})
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(c.Writer, ": ping\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
