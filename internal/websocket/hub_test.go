package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ang3l-dev/Ang3l-Dash/internal/config"
	"github.com/Ang3l-dev/Ang3l-Dash/internal/shared/testutil"
)

// idleConn is a Connection that never delivers a message.
type idleConn struct{}

func (idleConn) WriteMessage(int, []byte) error    { return nil }
func (idleConn) ReadMessage() (int, []byte, error) { select {} }
func (idleConn) Close() error                      { return nil }
func (idleConn) SetReadDeadline(time.Time) error   { return nil }
func (idleConn) SetWriteDeadline(time.Time) error  { return nil }
func (idleConn) SetReadLimit(int64)                {}
func (idleConn) SetPongHandler(func(string) error) {}
func (idleConn) RemoteAddr() string                { return "127.0.0.1:1" }

func decode(t *testing.T, raw []byte) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func receive(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case raw, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		return decode(t, raw)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return Envelope{}
	}
}

func TestHub_RegisterBroadcastUnregister(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(logger, nil)
	hub.Start()
	defer hub.Stop()

	client := NewClient(hub, idleConn{}, "trace-1", logger)
	hub.Register(client)

	hello := receive(t, client)
	assert.Equal(t, TypeConnection, hello.Type)
	assert.Equal(t, "trace-1", hello.TraceID)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Broadcast("workflow_completed", map[string]string{"batch_id": "b-1"})
	event := receive(t, client)
	assert.Equal(t, "workflow_completed", event.Type)
	assert.Equal(t, map[string]interface{}{"batch_id": "b-1"}, event.Data)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
	_, ok := <-client.send
	assert.False(t, ok)
}

func TestHub_DropsSlowClients(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()
	defer hub.Stop()

	client := NewClient(hub, idleConn{}, "", nil)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		hub.Broadcast("tick", 0)
		return hub.ClientCount() == 0
	}, 5*time.Second, time.Millisecond)
}

func TestHub_BroadcastAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()
	hub.Stop()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer*2; i++ {
			hub.Broadcast("tick", i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked after Stop")
	}
}

func TestServeWS(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()
	defer hub.Stop()

	ws := NewServer(hub, config.WebSocketConfig{PingPeriod: time.Minute, PongWait: time.Second}, nil)
	assert.Equal(t, 900*time.Millisecond, ws.pingPeriod)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = ws.ServeWS(w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, TypeConnection, decode(t, raw).Type)

	hub.Broadcast("workflow_started", map[string]string{"workflow": "merge"})
	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "workflow_started", decode(t, raw).Type)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeWS_RejectsPlainHTTP(t *testing.T) {
	hub := NewHub(nil, nil)
	rec := httptest.NewRecorder()
	err := NewServer(hub, config.WebSocketConfig{}, nil).ServeWS(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
