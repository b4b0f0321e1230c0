// internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn is the part of *websocket.Conn the hub writes through.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one live connection. Writes are serialized; gorilla connections
// support a single concurrent writer.
type Client struct {
	UserID string
	// all is set for admin-tier users, who receive events of every facility.
	all        bool
	facilities map[string]bool
	conn       Conn
	writeMu    sync.Mutex
}

func (c *Client) write(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

func (c *Client) subscribed(facilityID string) bool {
	return c.all || c.facilities[facilityID]
}

// Hub manages every live websocket client.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a connection subscribed to the given facilities, or to all of them.
func (h *Hub) Register(userID string, all bool, facilityIDs []string, conn Conn) *Client {
	client := &Client{
		UserID:     userID,
		all:        all,
		facilities: make(map[string]bool, len(facilityIDs)),
		conn:       conn,
	}
	for _, id := range facilityIDs {
		client.facilities[id] = true
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("websocket client registered", zap.String("user_id", userID), zap.Int("facilities", len(facilityIDs)))
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		h.logger.Info("websocket client unregistered", zap.String("user_id", client.UserID))
	}
}

// Event is the JSON frame pushed to clients.
type Event struct {
	Type       string      `json:"event"`
	FacilityID string      `json:"facilityId"`
	Data       interface{} `json:"data"`
	SentAt     time.Time   `json:"sentAt"`
}

// Broadcast pushes an event to every client subscribed to facilityID and
// returns how many received it. Failed clients are closed and dropped.
func (h *Hub) Broadcast(facilityID, eventType string, data interface{}) int {
	message, err := json.Marshal(Event{Type: eventType, FacilityID: facilityID, Data: data, SentAt: time.Now()})
	if err != nil {
		h.logger.Error("failed to encode websocket event", zap.String("event", eventType), zap.Error(err))
		return 0
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if client.subscribed(facilityID) {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, client := range targets {
		if err := client.write(message); err != nil {
			h.logger.Warn("websocket send failed, dropping client", zap.String("user_id", client.UserID), zap.Error(err))
			h.Unregister(client)
			_ = client.conn.Close()
			continue
		}
		delivered++
	}
	return delivered
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
