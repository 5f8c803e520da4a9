// Package notify maintains at most one live connection to the
// notification hub per user and fans every inbound push out to all
// local subscribers.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Notification mirrors the server push payload.
type Notification struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"userId"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Data      string     `json:"data,omitempty"`
	ReadAt    *time.Time `json:"readAt"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Hub event names.
const (
	eventReceiveNotification = "ReceiveNotification"
	userEventPrefix          = "notifications_email_"
)

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

// TokenSource supplies the bearer token at (re)connect time.
type TokenSource func() string

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HubURL templates the hub endpoint from the API base, flipping the
// scheme to websocket.
func HubURL(base string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/notificationHub"
}

// Manager is a process-wide singleton shared by every component that
// wants notifications. Connect replaces rather than duplicates; the
// generation counter keeps a stale teardown or reconnect loop from
// touching a newer connection.
type Manager struct {
	url        string
	tokens     TokenSource
	retryDelay time.Duration

	mu      sync.Mutex
	gen     uint64
	conn    *websocket.Conn
	state   State
	email   string
	subs    map[int]func(Notification)
	nextSub int
	refs    int
}

func NewManager(hubURL string, tokens TokenSource) *Manager {
	return &Manager{
		url:        hubURL,
		tokens:     tokens,
		retryDelay: 5 * time.Second,
		subs:       make(map[int]func(Notification)),
	}
}

// SetRetryDelay overrides the fixed reconnect delay. Call before Connect.
func (m *Manager) SetRetryDelay(d time.Duration) { m.retryDelay = d }

// Connect establishes the hub connection for the given user. Idempotent
// with respect to prior connections: an existing one is torn down first.
// Delivery covers both the per-user channel derived from the email and
// the generic broadcast fallback.
func (m *Manager) Connect(ctx context.Context, email string) error {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.email = email
	m.state = StateConnecting
	m.mu.Unlock()

	conn, err := m.dial(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		// A newer Connect or Disconnect won while we were dialing.
		if conn != nil {
			conn.Close()
		}
		return nil
	}
	if err != nil {
		m.state = StateDisconnected
		log.Printf("[notify] connect: %v", err)
		return err
	}
	m.conn = conn
	m.state = StateConnected
	go m.readLoop(gen, conn, email)
	return nil
}

// Disconnect stops the connection and drops every subscriber. Safe when
// not connected.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.state = StateDisconnected
	m.subs = make(map[int]func(Notification))
	m.refs = 0
}

// Subscribe registers a listener and returns the capability to remove
// exactly that listener. Every subscriber sees every event.
func (m *Manager) Subscribe(fn func(Notification)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected
}

func (m *Manager) ConnectionState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Acquire is the reference-counted entry point for component callers:
// the first acquirer opens the connection, later ones share it, and
// only closing the last handle tears it down. This keeps one mounted
// observer's unmount from disconnecting everyone else.
func (m *Manager) Acquire(ctx context.Context, email string) (*Handle, error) {
	m.mu.Lock()
	first := m.refs == 0 || m.email != email
	m.refs++
	m.mu.Unlock()
	if first {
		if err := m.Connect(ctx, email); err != nil {
			m.mu.Lock()
			if m.refs > 0 {
				m.refs--
			}
			m.mu.Unlock()
			return nil, err
		}
	}
	return &Handle{m: m}, nil
}

// Handle is one component's claim on the shared connection.
type Handle struct {
	m    *Manager
	once sync.Once
}

// Close releases the claim; the manager disconnects when the last
// handle closes. Safe to call more than once.
func (h *Handle) Close() {
	h.once.Do(func() {
		h.m.mu.Lock()
		if h.m.refs > 0 {
			h.m.refs--
		}
		last := h.m.refs == 0
		h.m.mu.Unlock()
		if last {
			h.m.Disconnect()
		}
	})
}

func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if m.tokens != nil {
		if tok := m.tokens(); tok != "" {
			header.Set("Authorization", "Bearer "+tok)
		}
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, m.url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// readLoop pumps inbound frames until the connection dies, then hands
// off to the reconnect loop if this generation is still current.
func (m *Manager) readLoop(gen uint64, conn *websocket.Conn, email string) {
	userEvent := userEventPrefix + email
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var frame wireEvent
		if json.Unmarshal(raw, &frame) != nil {
			continue
		}
		if frame.Event != eventReceiveNotification && frame.Event != userEvent {
			continue
		}
		var n Notification
		if json.Unmarshal(frame.Data, &n) != nil {
			continue
		}
		m.dispatch(n)
	}
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.conn = nil
	m.state = StateReconnecting
	m.mu.Unlock()
	go m.reconnectLoop(gen, email)
}

// reconnectLoop retries with a fixed delay until it succeeds or a newer
// generation supersedes it. Callers never need to re-issue Connect.
func (m *Manager) reconnectLoop(gen uint64, email string) {
	for {
		time.Sleep(m.retryDelay)
		m.mu.Lock()
		if gen != m.gen {
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		conn, err := m.dial(context.Background())
		m.mu.Lock()
		if gen != m.gen {
			m.mu.Unlock()
			if conn != nil {
				conn.Close()
			}
			return
		}
		if err != nil {
			log.Printf("[notify] reconnect: %v", err)
			m.mu.Unlock()
			continue
		}
		m.conn = conn
		m.state = StateConnected
		m.mu.Unlock()
		go m.readLoop(gen, conn, email)
		return
	}
}

// dispatch invokes every subscriber once. A panicking subscriber is
// isolated so it cannot block delivery to the others.
func (m *Manager) dispatch(n Notification) {
	m.mu.Lock()
	subs := make([]func(Notification), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[notify] subscriber panic: %v", r)
				}
			}()
			fn(n)
		}()
	}
}
