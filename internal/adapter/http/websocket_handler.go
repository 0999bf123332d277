package http

import (
	"github.com/gin-gonic/gin"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/ws"
)

type WebSocketHandler struct {
	hub *ws.Hub
}

func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// Handle blocks for the lifetime of the websocket connection. Accept has
// already answered the client when the upgrade fails.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	if err := h.hub.Serve(c.Writer, c.Request); err != nil {
		_ = c.Error(err)
	}
}
