package server

import (
	"encoding/json"
	"sync"
	"time"

	"RSIWatch/internal/model"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientSendSize = 4
)

// Subscription is the period and window a websocket client is watching.
type Subscription struct {
	Period model.Period
	Window int
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	sub  Subscription
}

// Hub fans out refreshed snapshots to websocket clients by subscription.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	logger  *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Subscriptions returns the distinct subscriptions of connected clients.
func (h *Hub) Subscriptions() []Subscription {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[Subscription]struct{})
	var subs []Subscription
	for c := range h.clients {
		if _, ok := seen[c.sub]; ok {
			continue
		}
		seen[c.sub] = struct{}{}
		subs = append(subs, c.sub)
	}
	return subs
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends snap to every client subscribed to its period and window.
// Slow clients whose buffer is full skip the update.
func (h *Hub) Publish(snap *model.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("marshal snapshot", zap.Error(err))
		return
	}
	sub := Subscription{Period: snap.Period, Window: snap.Window}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.sub != sub {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("websocket client too slow, dropping update",
				zap.String("remote", c.conn.RemoteAddr().String()))
		}
	}
}

// serve runs the client's pumps until the connection closes.
func (h *Hub) serve(c *wsClient) {
	h.register(c)
	go h.writePump(c)
	h.readPump(c)
}

// readPump discards inbound messages and detects disconnects.
func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
