package ws

import (
	"encoding/json"
	"testing"

	"showroom/internal/domain"
)

func newTestClient(userID uint, email string) *Client {
	return &Client{UserID: userID, Email: email, Role: domain.RoleStudent, Send: make(chan []byte, 8)}
}

func TestHubRegisterAndClose(t *testing.T) {
	hub := NewHub()
	c := newTestClient(1, "a@example.edu")

	hub.Register(c)
	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}

	c.Close()
	if hub.ClientCount() != 0 {
		t.Fatalf("expected client to be unregistered on close")
	}
	// Close is safe to repeat.
	c.Close()
}

func TestHubNotifyUserTargetsEmailChannel(t *testing.T) {
	hub := NewHub()
	a := newTestClient(1, "a@example.edu")
	b := newTestClient(2, "b@example.edu")
	hub.Register(a)
	hub.Register(b)

	hub.NotifyUser("a@example.edu", map[string]any{"title": "graded"})

	select {
	case raw := <-a.Send:
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		if ev.Event != domain.UserNotificationEvent("a@example.edu") {
			t.Fatalf("unexpected event name %q", ev.Event)
		}
	default:
		t.Fatal("expected event for a@example.edu")
	}
	select {
	case <-b.Send:
		t.Fatal("b must not receive a's notification")
	default:
	}
}

func TestHubBroadcastReachesEveryone(t *testing.T) {
	hub := NewHub()
	a := newTestClient(1, "a@example.edu")
	b := newTestClient(2, "b@example.edu")
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(map[string]any{"title": "maintenance"})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var ev Event
			if err := json.Unmarshal(raw, &ev); err != nil {
				t.Fatalf("bad frame: %v", err)
			}
			if ev.Event != domain.EventReceiveNotification {
				t.Fatalf("unexpected event name %q", ev.Event)
			}
		default:
			t.Fatalf("client %d missed broadcast", c.UserID)
		}
	}
}

func TestChatRoomJoinLeavePresence(t *testing.T) {
	hub := NewChatHub()
	room := hub.GetOrCreateRoom(10, 4)
	if hub.GetOrCreateRoom(10, 4) != room {
		t.Fatal("expected same room for same id")
	}

	a := newTestClient(1, "a@example.edu")
	b := newTestClient(2, "b@example.edu")
	room.Join(a)
	room.Join(b)
	if room.ClientCount() != 2 {
		t.Fatalf("expected 2 members, got %d", room.ClientCount())
	}
	if got := len(room.OnlineUserIDs()); got != 2 {
		t.Fatalf("expected 2 online users, got %d", got)
	}

	room.Leave(b)
	if got := len(room.OnlineUserIDs()); got != 1 {
		t.Fatalf("expected 1 online user after leave, got %d", got)
	}

	room.Leave(a)
	hub.RemoveRoomIfEmpty(10)
	if hub.GetRoom(10) != nil {
		t.Fatal("expected empty room to be removed")
	}
}

func TestChatRoomTypingStopOnDisconnect(t *testing.T) {
	room := NewChatRoom(10, 4)
	a := newTestClient(1, "a@example.edu")
	b := newTestClient(2, "b@example.edu")
	room.Join(a)
	room.Join(b)
	drain(a)
	drain(b)

	room.SetTyping(a, "Alice", true)
	ev := nextEvent(t, b)
	if ev.Event != domain.ChatEventUserTyping {
		t.Fatalf("expected user_typing, got %q", ev.Event)
	}

	room.Leave(a)
	ev = nextEvent(t, b)
	if ev.Event != domain.ChatEventUserTyping {
		t.Fatalf("expected implicit typing stop, got %q", ev.Event)
	}
	var p struct {
		IsTyping bool `json:"isTyping"`
	}
	if err := json.Unmarshal(ev.Data, &p); err != nil || p.IsTyping {
		t.Fatalf("expected isTyping=false, got %s", ev.Data)
	}
}

func TestBroadcastSkipsClosedClient(t *testing.T) {
	// A connection can close after a broadcast snapshots the member set.
	// Sending to the dead client must be a no-op, never a panic on its
	// closed Send channel.
	room := NewChatRoom(10, 4)
	a := newTestClient(1, "a@example.edu")
	b := newTestClient(2, "b@example.edu")
	room.Join(a)
	room.Join(b)
	drain(a)
	drain(b)

	a.Close()
	room.BroadcastMessage(map[string]any{"content": "still here?"})

	ev := nextEvent(t, b)
	if ev.Event != domain.ChatEventNewMessage {
		t.Fatalf("expected new_message, got %q", ev.Event)
	}

	hub := NewHub()
	c := newTestClient(3, "c@example.edu")
	hub.Register(c)
	c.mu.Lock()
	c.closed = true
	close(c.Send)
	c.mu.Unlock()
	hub.NotifyUser("c@example.edu", map[string]any{"title": "late"})
	hub.Broadcast(map[string]any{"title": "late"})
}

func drain(c *Client) {
	for {
		select {
		case <-c.Send:
		default:
			return
		}
	}
}

func nextEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.Send:
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("bad frame: %v", err)
		}
		return ev
	default:
		t.Fatal("expected an event")
		return Event{}
	}
}
