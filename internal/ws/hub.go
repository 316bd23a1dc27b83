package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mlediamant/salon-crm/pkg/logging"
)

// Event is pushed to every connected dashboard session.
type Event struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Hub fans events out to connected admin dashboards. Connections that
// fail a write are dropped.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logging.Logger

	mu    sync.RWMutex
	conns map[string]*wsConn
}

type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Auth happens in the session middleware before the
			// upgrade, origins are already filtered by CORS.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[string]*wsConn),
	}
}

// HandleWS upgrades the request and keeps the connection registered
// until the peer goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	wsc := &wsConn{conn: conn}

	h.mu.Lock()
	h.conns[id] = wsc
	h.mu.Unlock()

	h.logger.Info("dashboard feed connected", "conn_id", id)

	defer func() {
		h.mu.Lock()
		delete(h.conns, id)
		h.mu.Unlock()
		_ = conn.Close()
		h.logger.Info("dashboard feed disconnected", "conn_id", id)
	}()

	// Drain control and ping frames; the feed is write-only.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast sends the event to every connection. Implements the bot
// processor's Broadcaster.
func (h *Hub) Broadcast(eventType string, payload any) {
	evt := Event{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	h.mu.RLock()
	conns := make(map[string]*wsConn, len(h.conns))
	for id, c := range h.conns {
		conns[id] = c
	}
	h.mu.RUnlock()

	for id, c := range conns {
		c.mu.Lock()
		err := c.conn.WriteJSON(evt)
		c.mu.Unlock()
		if err != nil {
			h.logger.Warn("dropping dead feed connection", "conn_id", id, "error", err)
			h.mu.Lock()
			delete(h.conns, id)
			h.mu.Unlock()
			_ = c.conn.Close()
		}
	}
}

// ClientCount reports the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
