package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/adapter/events"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/port"
)

const writeTimeout = 10 * time.Second

// Hub bridges the template event stream to websocket clients. Every client
// gets its own subscription and receives one text frame per event.
type Hub struct {
	subscriber port.EventSubscriber
	logger     *zap.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(subscriber port.EventSubscriber, logger *zap.Logger) *Hub {
	return &Hub{
		subscriber: subscriber,
		logger:     logger,
		clients:    make(map[*websocket.Conn]struct{}),
	}
}

// Serve upgrades the request and streams events until the client goes away
// or the event source shuts down.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return err
	}

	h.addClient(conn)
	defer h.removeClient(conn)

	sub := h.subscriber.Subscribe()
	defer sub.Close()

	// CloseRead discards client frames and cancels ctx once the peer closes.
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return nil
			}
			data, err := json.Marshal(events.NewMessage(event))
			if err != nil {
				h.logger.Error("encode websocket event", zap.Error(err))
				continue
			}
			if err := h.write(ctx, conn, data); err != nil {
				h.logger.Debug("websocket client gone", zap.Error(err))
				return nil
			}
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

func (h *Hub) addClient(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close(websocket.StatusNormalClosure, "")
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
