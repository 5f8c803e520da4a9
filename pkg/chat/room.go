// Package chat maintains one socket connection per open chat room,
// scoped to {room, user, group}, and exposes the room actions.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Socket event names, both directions.
const (
	eventJoinRoom    = "join_room"
	eventSendMessage = "send_message"
	eventTypingStart = "typing_start"
	eventTypingStop  = "typing_stop"
	eventMarkRead    = "mark_read"

	eventNewMessage    = "new_message"
	eventUserTyping    = "user_typing"
	eventMemberOnline  = "member_online"
	eventMemberOffline = "member_offline"
	eventOnlineUsers   = "online_users"
)

// ErrMissingKey is returned when any of {room, user, group} is unset:
// the connection is a pure function of its three keys and must not
// exist without all of them.
var ErrMissingKey = errors.New("chat: roomId, userId and groupId are all required")

var ErrNotConnected = errors.New("chat: not connected")

// Keys identify the conversation resource.
type Keys struct {
	RoomID  uint
	UserID  uint
	GroupID uint
}

// Message mirrors the server chat message, including the sender
// snapshot frozen at send time.
type Message struct {
	ID            uint      `json:"id"`
	RoomID        uint      `json:"roomId"`
	SenderID      uint      `json:"senderId"`
	SenderName    string    `json:"senderName"`
	SenderEmail   string    `json:"senderEmail"`
	SenderAvatar  string    `json:"senderAvatar"`
	Kind          string    `json:"kind"`
	Content       string    `json:"content"`
	FileID        string    `json:"fileId,omitempty"`
	FileName      string    `json:"fileName,omitempty"`
	FileSize      int64     `json:"fileSize,omitempty"`
	FileMimeType  string    `json:"fileMimeType,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Outbound is what SendMessage puts on the wire; the server freezes the
// sender snapshot itself.
type Outbound struct {
	Kind         string `json:"kind"`
	Content      string `json:"content"`
	FileID       string `json:"fileId,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	FileMimeType string `json:"fileMimeType,omitempty"`
}

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	}
	return "disconnected"
}

// Handlers are the room's inbound callbacks. Nil members are skipped.
type Handlers struct {
	// OnMessage fires for every new message, own echoes included; an
	// echo is deliverable exactly once per correlation id.
	OnMessage func(Message)
	// OnTypingChanged receives the current set of typing display names.
	OnTypingChanged func([]string)
	// OnPresenceChanged receives the online user id list.
	OnPresenceChanged func([]uint)
	OnStateChange     func(State)
}

// TokenSource supplies the bearer token at (re)connect time.
type TokenSource func() string

// Options configure the connection; reconnect policy is fixed at
// construction.
type Options struct {
	URL            string
	Token          TokenSource
	ReconnectDelay time.Duration
	MaxAttempts    int
}

func (o *Options) withDefaults() {
	if o.ReconnectDelay == 0 {
		o.ReconnectDelay = 3 * time.Second
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 5
	}
}

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Room is one live conversation connection.
type Room struct {
	opts     Options
	keys     Keys
	handlers Handlers

	mu      sync.Mutex
	conn    *websocket.Conn
	state   State
	closed  bool
	typing  map[uint]string
	online  []uint
	pending   map[string]struct{} // correlation ids awaiting echo
	seen      map[string]struct{} // correlation ids already delivered
	seenOrder []string            // insertion order, for eviction
}

// seenCap bounds the dedup window. Echoes for a send arrive close
// together, so a short window is plenty for a long-lived room.
const seenCap = 256

// rememberSeenLocked records a delivered correlation id, evicting the
// oldest once the window is full. Caller holds r.mu.
func (r *Room) rememberSeenLocked(id string) {
	r.seen[id] = struct{}{}
	r.seenOrder = append(r.seenOrder, id)
	for len(r.seenOrder) > seenCap {
		delete(r.seen, r.seenOrder[0])
		r.seenOrder = r.seenOrder[1:]
	}
}

// Open connects and joins the room. It refuses to run with any key
// missing; a torn-down key set means no resource.
func Open(ctx context.Context, opts Options, keys Keys, handlers Handlers) (*Room, error) {
	if keys.RoomID == 0 || keys.UserID == 0 || keys.GroupID == 0 {
		return nil, ErrMissingKey
	}
	opts.withDefaults()
	r := &Room{
		opts:     opts,
		keys:     keys,
		handlers: handlers,
		typing:   make(map[uint]string),
		pending:  make(map[string]struct{}),
		seen:     make(map[string]struct{}),
	}
	r.setState(StateConnecting)
	conn, err := r.dial(ctx)
	if err != nil {
		r.setState(StateDisconnected)
		return nil, err
	}
	if err := r.join(conn); err != nil {
		conn.Close()
		r.setState(StateDisconnected)
		return nil, err
	}
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	r.setState(StateConnected)
	go r.readLoop(conn)
	return r, nil
}

// Close fully disconnects. Safe to call more than once.
func (r *Room) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	r.setState(StateDisconnected)
}

// SendMessage emits fire-and-forget; the correlation id lets the
// server echo reconcile with this send instead of displaying twice.
func (r *Room) SendMessage(msg Outbound) (correlationID string, err error) {
	if msg.Kind == "" {
		msg.Kind = "text"
	}
	correlationID = uuid.New().String()
	payload := struct {
		Outbound
		CorrelationID string `json:"correlationId"`
	}{msg, correlationID}
	r.mu.Lock()
	r.pending[correlationID] = struct{}{}
	r.mu.Unlock()
	if err := r.writeEvent(eventSendMessage, payload); err != nil {
		r.mu.Lock()
		delete(r.pending, correlationID)
		r.mu.Unlock()
		return "", err
	}
	return correlationID, nil
}

func (r *Room) StartTyping(name string) error {
	return r.writeEvent(eventTypingStart, map[string]string{"name": name})
}

func (r *Room) StopTyping() error {
	return r.writeEvent(eventTypingStop, map[string]string{})
}

// MarkRead signals the user has read up to now in this room.
func (r *Room) MarkRead() error {
	return r.writeEvent(eventMarkRead, map[string]string{})
}

func (r *Room) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) Connected() bool { return r.State() == StateConnected }

// TypingNames returns who is typing right now.
func (r *Room) TypingNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.typingNamesLocked()
}

// OnlineUsers returns the last presence roster pushed by the server.
func (r *Room) OnlineUsers() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint, len(r.online))
	copy(out, r.online)
	return out
}

func (r *Room) typingNamesLocked() []string {
	names := make([]string, 0, len(r.typing))
	for _, n := range r.typing {
		names = append(names, n)
	}
	return names
}

func (r *Room) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if r.opts.Token != nil {
		if tok := r.opts.Token(); tok != "" {
			header.Set("Authorization", "Bearer "+tok)
		}
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, r.opts.URL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

func (r *Room) join(conn *websocket.Conn) error {
	payload := map[string]uint{
		"roomId":  r.keys.RoomID,
		"userId":  r.keys.UserID,
		"groupId": r.keys.GroupID,
	}
	return writeFrame(conn, eventJoinRoom, payload)
}

func (r *Room) writeEvent(name string, payload interface{}) error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return writeFrame(conn, name, payload)
}

func writeFrame(conn *websocket.Conn, name string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(wireEvent{Event: name, Data: data})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func (r *Room) setState(s State) {
	r.mu.Lock()
	if r.state == s {
		r.mu.Unlock()
		return
	}
	r.state = s
	r.mu.Unlock()
	if r.handlers.OnStateChange != nil {
		r.handlers.OnStateChange(s)
	}
}

func (r *Room) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var frame wireEvent
		if json.Unmarshal(raw, &frame) != nil {
			continue
		}
		r.handle(frame)
	}
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}
	r.reconnect()
}

// reconnect retries with the fixed policy; exhaustion just leaves the
// room disconnected, send controls disabled.
func (r *Room) reconnect() {
	r.setState(StateReconnecting)
	for attempt := 1; attempt <= r.opts.MaxAttempts; attempt++ {
		time.Sleep(r.opts.ReconnectDelay)
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()

		conn, err := r.dial(context.Background())
		if err != nil {
			log.Printf("[chat] reconnect %d/%d: %v", attempt, r.opts.MaxAttempts, err)
			continue
		}
		if err := r.join(conn); err != nil {
			conn.Close()
			log.Printf("[chat] rejoin: %v", err)
			continue
		}
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			conn.Close()
			return
		}
		r.conn = conn
		r.mu.Unlock()
		r.setState(StateConnected)
		go r.readLoop(conn)
		return
	}
	r.setState(StateDisconnected)
}

func (r *Room) handle(frame wireEvent) {
	switch frame.Event {
	case eventNewMessage:
		var msg Message
		if json.Unmarshal(frame.Data, &msg) != nil {
			return
		}
		if msg.CorrelationID != "" {
			r.mu.Lock()
			if _, dup := r.seen[msg.CorrelationID]; dup {
				r.mu.Unlock()
				return
			}
			// Only our own sends can echo back more than once, so only
			// ids we issued are remembered. Other members' ids would
			// grow the set for the lifetime of the room.
			if _, ours := r.pending[msg.CorrelationID]; ours {
				delete(r.pending, msg.CorrelationID)
				r.rememberSeenLocked(msg.CorrelationID)
			}
			r.mu.Unlock()
		}
		if r.handlers.OnMessage != nil {
			r.handlers.OnMessage(msg)
		}
	case eventUserTyping:
		var p struct {
			UserID   uint   `json:"userId"`
			Name     string `json:"name"`
			IsTyping bool   `json:"isTyping"`
		}
		if json.Unmarshal(frame.Data, &p) != nil {
			return
		}
		r.mu.Lock()
		if p.IsTyping {
			r.typing[p.UserID] = p.Name
		} else {
			delete(r.typing, p.UserID)
		}
		names := r.typingNamesLocked()
		r.mu.Unlock()
		if r.handlers.OnTypingChanged != nil {
			r.handlers.OnTypingChanged(names)
		}
	case eventMemberOnline, eventMemberOffline:
		var p struct {
			UserID uint `json:"userId"`
		}
		if json.Unmarshal(frame.Data, &p) != nil {
			return
		}
		r.mu.Lock()
		if frame.Event == eventMemberOnline {
			r.online = appendUnique(r.online, p.UserID)
		} else {
			r.online = remove(r.online, p.UserID)
		}
		roster := make([]uint, len(r.online))
		copy(roster, r.online)
		r.mu.Unlock()
		if r.handlers.OnPresenceChanged != nil {
			r.handlers.OnPresenceChanged(roster)
		}
	case eventOnlineUsers:
		var ids []uint
		if json.Unmarshal(frame.Data, &ids) != nil {
			return
		}
		r.mu.Lock()
		r.online = ids
		roster := make([]uint, len(ids))
		copy(roster, ids)
		r.mu.Unlock()
		if r.handlers.OnPresenceChanged != nil {
			r.handlers.OnPresenceChanged(roster)
		}
	}
}

func appendUnique(ids []uint, id uint) []uint {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}

func remove(ids []uint, id uint) []uint {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
