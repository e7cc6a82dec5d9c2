package websocket

import (
	"encoding/json"
	"sync"

	"github.com/farmavida/farmavida-backend/internal/cartstore"
	"github.com/farmavida/farmavida-backend/pkg/logger"
)

// Hub fans cart updates out to every open tab of a session. A browser with
// three tabs holds three clients under the same session id; when the cart
// changes anywhere (this tab, another tab, another device on the same
// session), every tab gets the fresh snapshot and re-renders.
type Hub struct {
	// session id -> connected tabs
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *sessionUpdate

	mu sync.RWMutex
}

type sessionUpdate struct {
	sessionID string
	message   []byte
}

// CartMessage is the wire shape pushed to tabs.
type CartMessage struct {
	Type      string           `json:"type"`
	Lines     []cartstore.Line `json:"lines"`
	Total     float64          `json:"total"`
	ItemCount int              `json:"item_count"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *sessionUpdate, 1024),
	}
}

// Run processes registrations and broadcasts. Start it once, in its own
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			tabs := len(h.clients[client.SessionID])
			h.mu.Unlock()
			logger.Debug("WebSocket client registered", map[string]interface{}{
				"session": client.SessionID,
				"tabs":    tabs,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if tabs, ok := h.clients[client.SessionID]; ok {
				remaining := make([]*Client, 0, len(tabs))
				for _, c := range tabs {
					if c != client {
						remaining = append(remaining, c)
					}
				}
				if len(remaining) == 0 {
					delete(h.clients, client.SessionID)
				} else {
					h.clients[client.SessionID] = remaining
				}
				close(client.Send)
			}
			h.mu.Unlock()

		case update := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[update.sessionID] {
				select {
				case client.Send <- update.message:
				default:
					// Send buffer full; the client is falling behind and
					// the next update supersedes this one anyway.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishCart pushes a snapshot to all tabs of a session. Safe to call from
// any goroutine; intended as a cartstore.Subscriber adapter.
func (h *Hub) PublishCart(sessionID string, view CartMessage) {
	view.Type = "cart_updated"
	message, err := json.Marshal(view)
	if err != nil {
		logger.Error("Failed to marshal cart update", err, map[string]interface{}{
			"session": sessionID,
		})
		return
	}
	select {
	case h.broadcast <- &sessionUpdate{sessionID: sessionID, message: message}:
	default:
		logger.Warn("Cart update broadcast queue full, dropping", map[string]interface{}{
			"session": sessionID,
		})
	}
}
