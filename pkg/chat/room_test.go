package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// roomServer validates the join frame, then echoes every send_message
// back as new_message, twice when dup is set.
func roomServer(t *testing.T, dup bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame wireEvent
		require.NoError(t, json.Unmarshal(raw, &frame))
		require.Equal(t, eventJoinRoom, frame.Event)
		var join struct {
			RoomID  uint `json:"roomId"`
			UserID  uint `json:"userId"`
			GroupID uint `json:"groupId"`
		}
		require.NoError(t, json.Unmarshal(frame.Data, &join))
		require.NotZero(t, join.RoomID)
		require.NotZero(t, join.UserID)
		require.NotZero(t, join.GroupID)

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if json.Unmarshal(raw, &frame) != nil || frame.Event != eventSendMessage {
				continue
			}
			var sent struct {
				Kind          string `json:"kind"`
				Content       string `json:"content"`
				CorrelationID string `json:"correlationId"`
			}
			if json.Unmarshal(frame.Data, &sent) != nil {
				continue
			}
			echo, _ := json.Marshal(Message{
				ID:            1,
				RoomID:        join.RoomID,
				SenderID:      join.UserID,
				Kind:          sent.Kind,
				Content:       sent.Content,
				CorrelationID: sent.CorrelationID,
			})
			out, _ := json.Marshal(wireEvent{Event: eventNewMessage, Data: echo})
			conn.WriteMessage(websocket.TextMessage, out)
			if dup {
				conn.WriteMessage(websocket.TextMessage, out)
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func testKeys() Keys { return Keys{RoomID: 3, UserID: 7, GroupID: 11} }

func TestOpenRequiresAllKeys(t *testing.T) {
	partials := []Keys{
		{},
		{RoomID: 3},
		{RoomID: 3, UserID: 7},
		{UserID: 7, GroupID: 11},
	}
	for _, keys := range partials {
		_, err := Open(context.Background(), Options{URL: "ws://127.0.0.1:0/ws/chat"}, keys, Handlers{})
		assert.ErrorIs(t, err, ErrMissingKey, "keys %+v", keys)
	}
}

func TestSendMessageEchoCarriesCorrelationID(t *testing.T) {
	srv := roomServer(t, false)
	defer srv.Close()

	got := make(chan Message, 1)
	room, err := Open(context.Background(), Options{URL: wsURL(srv)}, testKeys(), Handlers{
		OnMessage: func(m Message) { got <- m },
	})
	require.NoError(t, err)
	defer room.Close()
	require.True(t, room.Connected())

	corrID, err := room.SendMessage(Outbound{Content: "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, corrID)

	select {
	case m := <-got:
		assert.Equal(t, "hello", m.Content)
		assert.Equal(t, corrID, m.CorrelationID)
	case <-time.After(2 * time.Second):
		t.Fatal("echo never arrived")
	}
}

func TestDuplicateEchoDeliveredOnce(t *testing.T) {
	srv := roomServer(t, true)
	defer srv.Close()

	var delivered atomic.Int32
	first := make(chan struct{}, 1)
	room, err := Open(context.Background(), Options{URL: wsURL(srv)}, testKeys(), Handlers{
		OnMessage: func(Message) {
			delivered.Add(1)
			select {
			case first <- struct{}{}:
			default:
			}
		},
	})
	require.NoError(t, err)
	defer room.Close()

	_, err = room.SendMessage(Outbound{Content: "once"})
	require.NoError(t, err)

	select {
	case <-first:
	case <-time.After(2 * time.Second):
		t.Fatal("echo never arrived")
	}
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), delivered.Load())
}

func TestSeenWindowOnlyTracksOwnSends(t *testing.T) {
	r := &Room{
		typing:  make(map[uint]string),
		pending: make(map[string]struct{}),
		seen:    make(map[string]struct{}),
	}
	var delivered int
	r.handlers.OnMessage = func(Message) { delivered++ }

	echo := func(id string) {
		data, _ := json.Marshal(Message{ID: 1, Content: "hi", CorrelationID: id})
		r.handle(wireEvent{Event: eventNewMessage, Data: data})
	}

	// Other members' ids are delivered but never remembered.
	for i := 0; i < 500; i++ {
		echo(fmt.Sprintf("peer-%d", i))
	}
	assert.Equal(t, 500, delivered)
	assert.Empty(t, r.seen)

	// Our own ids are remembered for dedup inside a bounded window.
	for i := 0; i < seenCap+50; i++ {
		id := fmt.Sprintf("mine-%d", i)
		r.pending[id] = struct{}{}
		echo(id)
	}
	assert.Len(t, r.seen, seenCap)
	assert.Len(t, r.seenOrder, seenCap)
	assert.Empty(t, r.pending)

	// A duplicate echo inside the window is still suppressed.
	before := delivered
	echo(fmt.Sprintf("mine-%d", seenCap+49))
	assert.Equal(t, before, delivered)
}

func TestTypingSetFollowsStartAndStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage() // join

		start, _ := json.Marshal(map[string]interface{}{"userId": 5, "name": "Ada", "isTyping": true})
		out, _ := json.Marshal(wireEvent{Event: eventUserTyping, Data: start})
		conn.WriteMessage(websocket.TextMessage, out)

		stop, _ := json.Marshal(map[string]interface{}{"userId": 5, "name": "Ada", "isTyping": false})
		out, _ = json.Marshal(wireEvent{Event: eventUserTyping, Data: stop})
		conn.WriteMessage(websocket.TextMessage, out)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	changes := make(chan []string, 4)
	room, err := Open(context.Background(), Options{URL: wsURL(srv)}, testKeys(), Handlers{
		OnTypingChanged: func(names []string) { changes <- names },
	})
	require.NoError(t, err)
	defer room.Close()

	select {
	case names := <-changes:
		assert.Equal(t, []string{"Ada"}, names)
	case <-time.After(2 * time.Second):
		t.Fatal("typing start never arrived")
	}
	select {
	case names := <-changes:
		assert.Empty(t, names)
	case <-time.After(2 * time.Second):
		t.Fatal("typing stop never arrived")
	}
}

func TestPresenceRoster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage() // join

		roster, _ := json.Marshal([]uint{7, 5})
		out, _ := json.Marshal(wireEvent{Event: eventOnlineUsers, Data: roster})
		conn.WriteMessage(websocket.TextMessage, out)

		off, _ := json.Marshal(map[string]uint{"userId": 5})
		out, _ = json.Marshal(wireEvent{Event: eventMemberOffline, Data: off})
		conn.WriteMessage(websocket.TextMessage, out)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	changes := make(chan []uint, 4)
	room, err := Open(context.Background(), Options{URL: wsURL(srv)}, testKeys(), Handlers{
		OnPresenceChanged: func(ids []uint) { changes <- ids },
	})
	require.NoError(t, err)
	defer room.Close()

	select {
	case ids := <-changes:
		assert.Equal(t, []uint{7, 5}, ids)
	case <-time.After(2 * time.Second):
		t.Fatal("roster never arrived")
	}
	select {
	case ids := <-changes:
		assert.Equal(t, []uint{7}, ids)
	case <-time.After(2 * time.Second):
		t.Fatal("offline event never arrived")
	}
}

func TestCloseDisconnects(t *testing.T) {
	srv := roomServer(t, false)
	defer srv.Close()

	room, err := Open(context.Background(), Options{URL: wsURL(srv)}, testKeys(), Handlers{})
	require.NoError(t, err)
	require.True(t, room.Connected())

	room.Close()
	assert.False(t, room.Connected())
	assert.Equal(t, StateDisconnected, room.State())
	_, err = room.SendMessage(Outbound{Content: "after close"})
	assert.ErrorIs(t, err, ErrNotConnected)

	// Second close is harmless.
	room.Close()
}
