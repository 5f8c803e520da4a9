package ws

import (
	"sync"

	"showroom/internal/domain"
)

// ChatRoom is the live side of one group conversation: connected
// members, who is typing, who is online.
type ChatRoom struct {
	RoomID  uint
	GroupID uint

	mu      sync.RWMutex
	clients map[*Client]struct{}
	typing  map[uint]string // userID -> display name
}

func NewChatRoom(roomID, groupID uint) *ChatRoom {
	return &ChatRoom{
		RoomID:  roomID,
		GroupID: groupID,
		clients: make(map[*Client]struct{}),
		typing:  make(map[uint]string),
	}
}

type typingPayload struct {
	UserID   uint   `json:"userId"`
	Name     string `json:"name"`
	IsTyping bool   `json:"isTyping"`
}

type presencePayload struct {
	UserID uint `json:"userId"`
}

// Join registers the connection and announces presence to the room.
func (r *ChatRoom) Join(c *Client) {
	r.mu.Lock()
	r.clients[c] = struct{}{}
	r.mu.Unlock()
	r.broadcast(domain.ChatEventMemberOnline, presencePayload{UserID: c.UserID}, c)
	r.broadcast(domain.ChatEventOnlineUsers, r.OnlineUserIDs(), nil)
}

// Leave removes the connection. A member who disconnects mid-typing gets
// an implicit stop so the others drop the name.
func (r *ChatRoom) Leave(c *Client) {
	r.mu.Lock()
	delete(r.clients, c)
	name, wasTyping := r.typing[c.UserID]
	delete(r.typing, c.UserID)
	empty := len(r.clients) == 0
	r.mu.Unlock()
	if empty {
		return
	}
	if wasTyping {
		r.broadcast(domain.ChatEventUserTyping, typingPayload{UserID: c.UserID, Name: name, IsTyping: false}, nil)
	}
	r.broadcast(domain.ChatEventMemberOffline, presencePayload{UserID: c.UserID}, nil)
	r.broadcast(domain.ChatEventOnlineUsers, r.OnlineUserIDs(), nil)
}

// SetTyping updates the typing set and tells everyone else.
func (r *ChatRoom) SetTyping(c *Client, name string, isTyping bool) {
	r.mu.Lock()
	if isTyping {
		r.typing[c.UserID] = name
	} else {
		name = r.typing[c.UserID]
		delete(r.typing, c.UserID)
	}
	r.mu.Unlock()
	r.broadcast(domain.ChatEventUserTyping, typingPayload{UserID: c.UserID, Name: name, IsTyping: isTyping}, c)
}

// BroadcastMessage delivers a persisted message to every member,
// including the sender, whose echo carries the correlation id.
func (r *ChatRoom) BroadcastMessage(payload interface{}) {
	r.broadcast(domain.ChatEventNewMessage, payload, nil)
}

func (r *ChatRoom) OnlineUserIDs() []uint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[uint]struct{}, len(r.clients))
	ids := make([]uint, 0, len(r.clients))
	for c := range r.clients {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		ids = append(ids, c.UserID)
	}
	return ids
}

func (r *ChatRoom) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// broadcast sends an event to room members, skipping `except` when set.
func (r *ChatRoom) broadcast(event string, payload interface{}, except *Client) {
	data := marshalEvent(event, payload)
	if data == nil {
		return
	}
	r.mu.RLock()
	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		if c != except {
			clients = append(clients, c)
		}
	}
	r.mu.RUnlock()
	for _, c := range clients {
		c.trySend(data)
	}
}

// ChatHub holds all live rooms by room ID.
type ChatHub struct {
	mu    sync.RWMutex
	rooms map[uint]*ChatRoom
}

func NewChatHub() *ChatHub {
	return &ChatHub{rooms: make(map[uint]*ChatRoom)}
}

func (h *ChatHub) GetOrCreateRoom(roomID, groupID uint) *ChatRoom {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[roomID]; ok {
		return r
	}
	r := NewChatRoom(roomID, groupID)
	h.rooms[roomID] = r
	return r
}

func (h *ChatHub) GetRoom(roomID uint) *ChatRoom {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomID]
}

func (h *ChatHub) RemoveRoomIfEmpty(roomID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[roomID]; ok && r.ClientCount() == 0 {
		delete(h.rooms, roomID)
	}
}
