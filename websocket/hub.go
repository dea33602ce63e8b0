package websocket

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

// Hub tracks live connections per user and fans notifications out to them.
type Hub struct {
	userConns  map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type ClientMessage struct {
	Action string `json:"action"`
}

func NewHub() *Hub {
	return &Hub{
		userConns:  make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// Run owns registration until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.userConns[client.UserID] == nil {
				h.userConns[client.UserID] = make(map[*Client]bool)
			}
			h.userConns[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if conns := h.userConns[client.UserID]; conns[client] {
				delete(conns, client)
				if len(conns) == 0 {
					delete(h.userConns, client.UserID)
				}
				close(client.Send)
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for _, conns := range h.userConns {
				for client := range conns {
					close(client.Send)
				}
			}
			h.userConns = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

// add hands client to Run. It reports false once the hub has stopped.
func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// Notify delivers an event to every connection of userID. Slow clients whose
// buffer is full are disconnected.
func (h *Hub) Notify(userID, event string, data any) {
	payload, err := json.Marshal(&Message{Event: event, Data: data})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to encode notification")
		return
	}
	h.sendToUser(userID, payload)
}

func (h *Hub) sendToUser(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.userConns[userID] {
		select {
		case client.Send <- payload:
		default:
			select {
			case h.unregister <- client:
			default:
			}
		}
	}
}

// reply queues payload for a single connection. Send is closed only under the
// write lock and after the client leaves userConns, so membership is checked
// under the read lock first.
func (h *Hub) reply(client *Client, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.userConns[client.UserID][client] {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}
