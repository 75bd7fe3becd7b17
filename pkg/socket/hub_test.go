package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h *Hub, userID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Serve(context.Background(), conn, userID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return h.Online() > 0 }, time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) types.PushMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg types.PushMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PushDeliversToUser(t *testing.T) {
	h := NewHub()
	conn := newTestServer(t, h, "u1")

	assert.Equal(t, 0, h.Push("someone-else", types.PushMessage{Event: "INSERT"}))
	assert.Equal(t, 1, h.Push("u1", types.PushMessage{Event: "INSERT", Table: "notifications"}))

	msg := readMessage(t, conn)
	assert.Equal(t, "INSERT", msg.Event)
	assert.Equal(t, "notifications", msg.Table)
}

func TestHub_PingPong(t *testing.T) {
	h := NewHub()
	conn := newTestServer(t, h, "u1")

	require.NoError(t, conn.WriteJSON(types.PushMessage{Event: "ping"}))
	assert.Equal(t, "pong", readMessage(t, conn).Event)
}

func TestHub_CheckDropsIdleClients(t *testing.T) {
	h := NewHub()
	newTestServer(t, h, "u1")

	h.check(time.Now().Add(heartbeatTimeout + time.Second))
	assert.Equal(t, 0, h.Online())
	assert.Equal(t, 0, h.Push("u1", types.PushMessage{Event: "INSERT"}))
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	h := NewHub()
	newTestServer(t, h, "u1")

	for _, c := range h.clients.Items() {
		c.Close(websocket.CloseNormalClosure, "bye")
		c.Close(websocket.CloseNormalClosure, "bye")
		assert.True(t, c.Closed())
		assert.False(t, c.Write([]byte("x")))
	}
}
