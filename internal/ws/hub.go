// Package ws pushes order lifecycle events to connected back-office
// clients so the admin order list updates without polling.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/tnmle/vastra-backend/internal/app/model"
	"github.com/tnmle/vastra-backend/pkg/logger"
)

// Event is the wire envelope pushed to admin clients
type Event struct {
	Type      string       `json:"type"`
	Order     *model.Order `json:"order,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Client is one connected back-office session. A user may hold several
// at once (multiple tabs, multiple devices).
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// Hub tracks connected admin clients and fans events out to all of them
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("Admin feed client connected", map[string]interface{}{
				"user_id":  client.UserID,
				"sessions": h.sessionCount(client.UserID),
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if list, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(list))
				for _, c := range list {
					if c != client {
						newList = append(newList, c)
					}
				}
				if len(newList) == 0 {
					delete(h.clients, client.UserID)
				} else {
					h.clients[client.UserID] = newList
				}
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("Admin feed client disconnected", map[string]interface{}{
				"user_id": client.UserID,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, list := range h.clients {
				for _, client := range list {
					select {
					case client.Send <- message:
					default:
						// Slow consumer, drop the event rather than block
						logger.Warn("Dropping event for slow admin feed client", map[string]interface{}{
							"user_id": client.UserID,
						})
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

// PublishOrderEvent satisfies the order service's publisher interface.
// It never blocks: the broadcast channel is buffered and overflow drops
// the event.
func (h *Hub) PublishOrderEvent(event string, order *model.Order) {
	raw, err := json.Marshal(Event{
		Type:      event,
		Order:     order,
		Timestamp: time.Now(),
	})
	if err != nil {
		logger.Error("Failed to encode order event", err, map[string]interface{}{
			"event": event,
		})
		return
	}

	select {
	case h.broadcast <- raw:
	default:
		logger.Warn("Order event dropped, broadcast buffer full", map[string]interface{}{
			"event": event,
		})
	}
}

func (h *Hub) sessionCount(userID uint) int {
	return len(h.clients[userID])
}

// ConnectedUsers returns how many distinct users hold open sessions
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
