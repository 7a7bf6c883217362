// Package events is the fire-and-forget publisher for applied transitions.
// Staff dashboards subscribe over a websocket; the engines publish and never
// wait on delivery.
package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/opskitchen/resto-ops/utils"
)

// Event types broadcast to subscribers.
const (
	EventTableStateUpdated = "table_state_updated"
	EventSuggestionCreated = "suggestion_created"
	EventEightySixCreated  = "eighty_six_created"
	EventEightySixResolved = "eighty_six_resolved"
)

type Message struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Hub fans messages out to all connected clients. Delivery is best-effort;
// a failed write drops that client's message, not the client.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]string),
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades the request and registers the connection until it drops.
func (h *Hub) Handler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("websocket upgrade failed: %v", err)
		return
	}

	role := c.Query("role")
	h.register(conn, role)

	go func() {
		defer h.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) register(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// Publish broadcasts one event to every connected client.
func (h *Hub) Publish(event string, data interface{}) {
	msg := Message{
		ID:        uuid.NewString(),
		Event:     event,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Printf("event marshal failed: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.ErrorLogger.Printf("event send failed: %v", err)
		}
	}
}
