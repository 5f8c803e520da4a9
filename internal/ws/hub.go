package ws

import (
	"sync"

	"showroom/internal/domain"
)

// Client represents a single WebSocket connection with user context.
type Client struct {
	UserID uint
	Email  string
	Role   string
	Send   chan []byte
	hub    *Hub
	mu     sync.Mutex
	closed bool
}

// trySend enqueues a payload without blocking. A client whose Send
// buffer is full or whose connection already closed is skipped; the mu
// guard keeps the send from racing Close's channel close.
func (c *Client) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// Hub maintains the set of notification-hub clients and fans events out
// to them. One user can hold multiple connections (several tabs).
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byEmail map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byEmail: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	h.clients[c] = struct{}{}
	if h.byEmail[c.Email] == nil {
		h.byEmail[c.Email] = make(map[*Client]struct{})
	}
	h.byEmail[c.Email][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	if m := h.byEmail[c.Email]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byEmail, c.Email)
		}
	}
}

// NotifyUser delivers a payload on the user's email-derived channel.
func (h *Hub) NotifyUser(email string, payload interface{}) {
	data := marshalEvent(domain.UserNotificationEvent(email), payload)
	if data == nil {
		return
	}
	h.mu.RLock()
	m := h.byEmail[email]
	if m == nil {
		h.mu.RUnlock()
		return
	}
	clients := make([]*Client, 0, len(m))
	for c := range m {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.trySend(data)
	}
}

// Broadcast delivers a payload on the generic fallback channel to every
// connected client.
func (h *Hub) Broadcast(payload interface{}) {
	data := marshalEvent(domain.EventReceiveNotification, payload)
	if data == nil {
		return
	}
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		c.trySend(data)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
