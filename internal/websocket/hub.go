package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/seedstoroots/seeds-backend/pkg/logger"
)

// CartEvent tells a user's other sessions that their persisted cart
// changed and should be re-fetched. This is the server side of what the
// browser storefront did with cross-tab storage events.
type CartEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type event struct {
	UserID  uint
	Message []byte
}

// Hub tracks the open cart event connections per user. A user can have
// several sessions at once (two tabs, phone and laptop).
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *event
}

// NewHub creates a Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *event, 1024),
	}
}

// Run processes hub events. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			logger.Info("Cart event client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": len(h.clients[client.UserID]),
			})

		case client := <-h.unregister:
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
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
			logger.Info("Cart event client unregistered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case ev := <-h.broadcast:
			for _, client := range h.clients[ev.UserID] {
				select {
				case client.Send <- ev.Message:
				default:
					// Slow consumer, drop the event rather than block the hub
					logger.Warn("Dropping cart event for slow client", map[string]interface{}{
						"user_id": ev.UserID,
					})
				}
			}
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// NotifyCartChanged pushes a cart_changed event to every open session
// of the given user. Implements service.CartNotifier.
func (h *Hub) NotifyCartChanged(userID uint, action string) {
	payload, err := json.Marshal(CartEvent{
		ID:        uuid.NewString(),
		Type:      "cart_changed",
		Action:    action,
		Timestamp: time.Now(),
	})
	if err != nil {
		logger.Error("Failed to marshal cart event", err, map[string]interface{}{
			"user_id": userID,
			"action":  action,
		})
		return
	}

	h.broadcast <- &event{UserID: userID, Message: payload}
}
