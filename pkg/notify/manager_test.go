package notify

import (
	"context"
	"encoding/json"
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

// hubServer upgrades every request and pushes a single user-channel
// notification, then holds the connection open.
func hubServer(t *testing.T, email string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		data, _ := json.Marshal(Notification{ID: 1, Title: "graded", Type: "Success"})
		frame, _ := json.Marshal(wireEvent{Event: userEventPrefix + email, Data: data})
		conn.WriteMessage(websocket.TextMessage, frame)
		// Keep open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestFanOutExactlyOnceWithPanickingSubscriber(t *testing.T) {
	srv := hubServer(t, "grace@uni.edu")
	defer srv.Close()

	m := NewManager(wsURL(srv), func() string { return "tok" })
	defer m.Disconnect()

	var first, second, panicky atomic.Int32
	done := make(chan struct{})
	m.Subscribe(func(n Notification) { first.Add(1) })
	m.Subscribe(func(n Notification) {
		panicky.Add(1)
		panic("bad subscriber")
	})
	m.Subscribe(func(n Notification) {
		second.Add(1)
		close(done)
	})

	require.NoError(t, m.Connect(context.Background(), "grace@uni.edu"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification never delivered")
	}
	// Let any spurious double-delivery surface.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), panicky.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestUnsubscribeRemovesExactlyThatListener(t *testing.T) {
	srv := hubServer(t, "grace@uni.edu")
	defer srv.Close()

	m := NewManager(wsURL(srv), nil)
	defer m.Disconnect()

	var kept, removed atomic.Int32
	done := make(chan struct{})
	unsub := m.Subscribe(func(Notification) { removed.Add(1) })
	m.Subscribe(func(Notification) {
		kept.Add(1)
		close(done)
	})
	unsub()

	require.NoError(t, m.Connect(context.Background(), "grace@uni.edu"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification never delivered")
	}
	assert.Equal(t, int32(0), removed.Load())
	assert.Equal(t, int32(1), kept.Load())
}

func TestDisconnectWhenNotConnected(t *testing.T) {
	m := NewManager("ws://127.0.0.1:0/notificationHub", nil)
	m.Disconnect()
	assert.False(t, m.IsConnected())
	assert.Equal(t, StateDisconnected, m.ConnectionState())
}

func TestConnectReplacesExistingConnection(t *testing.T) {
	srv := hubServer(t, "grace@uni.edu")
	defer srv.Close()

	m := NewManager(wsURL(srv), nil)
	defer m.Disconnect()
	require.NoError(t, m.Connect(context.Background(), "grace@uni.edu"))
	require.NoError(t, m.Connect(context.Background(), "grace@uni.edu"))
	assert.True(t, m.IsConnected())
}

func TestAcquireRefCounting(t *testing.T) {
	srv := hubServer(t, "grace@uni.edu")
	defer srv.Close()

	m := NewManager(wsURL(srv), nil)
	h1, err := m.Acquire(context.Background(), "grace@uni.edu")
	require.NoError(t, err)
	h2, err := m.Acquire(context.Background(), "grace@uni.edu")
	require.NoError(t, err)
	assert.True(t, m.IsConnected())

	// One observer unmounting must not tear down the shared connection.
	h1.Close()
	assert.True(t, m.IsConnected())

	h2.Close()
	assert.False(t, m.IsConnected())

	// Double close is harmless.
	h2.Close()
	assert.False(t, m.IsConnected())
}

func TestHubURL(t *testing.T) {
	assert.Equal(t, "ws://api.local/notificationHub", HubURL("http://api.local/"))
	assert.Equal(t, "wss://api.local/notificationHub", HubURL("https://api.local"))
}
