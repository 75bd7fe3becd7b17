package socket

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

const (
	heartbeatInterval = 10 * time.Second // 心跳检测间隔
	heartbeatTimeout  = 35 * time.Second // 超时时间是间隔的 2.5 倍以上
	writeWait         = 5 * time.Second
	sendBuffer        = 32
)

// Client 一条本地 UI 连接
type Client struct {
	cid      string
	userID   string
	conn     *websocket.Conn
	send     chan []byte
	lastTime atomic.Int64

	mu     sync.Mutex
	closed bool
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Write 非阻塞写，缓冲满时丢弃并返回 false
func (c *Client) Write(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close 可重复调用
func (c *Client) Close(code int, reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	_ = c.conn.Close()
}

// Hub 连接表，按连接 ID 存放，一个用户可以有多条连接
type Hub struct {
	clients cmap.ConcurrentMap[string, *Client]
}

func NewHub() *Hub {
	return &Hub{clients: cmap.New[*Client]()}
}

// Serve 接管连接直到对端断开或 ctx 结束
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, userID string) {
	c := &Client{
		cid:    uuid.NewString(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	c.lastTime.Store(time.Now().Unix())
	h.clients.Set(c.cid, c)
	log.L.Info("ws client connected", zap.String("cid", c.cid), zap.String("user_id", userID))

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(c)
	}()

	go func() {
		select {
		case <-ctx.Done():
			c.Close(websocket.CloseGoingAway, "server shutting down")
		case <-done:
		}
	}()

	h.readLoop(c)
	h.clients.Remove(c.cid)
	c.Close(websocket.CloseNormalClosure, "bye")
	<-done
	log.L.Info("ws client disconnected", zap.String("cid", c.cid), zap.String("user_id", userID))
}

func (h *Hub) readLoop(c *Client) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.lastTime.Store(time.Now().Unix())
		var in types.PushMessage
		if json.Unmarshal(data, &in) == nil && in.Event == "ping" {
			h.write(c, types.PushMessage{Event: "pong"})
		}
	}
}

func (h *Hub) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.L.Debug("ws write failed", zap.String("cid", c.cid), zap.Error(err))
			_ = c.conn.Close()
			return
		}
	}
}

func (h *Hub) write(c *Client, msg types.PushMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.L.Warn("encode push message failed", zap.String("event", msg.Event), zap.Error(err))
		return false
	}
	return c.Write(data)
}

// Push 发给该用户的全部连接，返回送达数
func (h *Hub) Push(userID string, msg types.PushMessage) int {
	n := 0
	for _, c := range h.clients.Items() {
		if c.userID == userID && h.write(c, msg) {
			n++
		}
	}
	return n
}

// Online 当前连接数
func (h *Hub) Online() int { return h.clients.Count() }

// Start 心跳检测，直到 ctx 结束后关闭全部连接
func (h *Hub) Start(ctx context.Context) error {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case now := <-ticker.C:
			h.check(now)
		}
	}
}

func (h *Hub) check(now time.Time) {
	for cid, c := range h.clients.Items() {
		idle := now.Sub(time.Unix(c.lastTime.Load(), 0))
		if idle > heartbeatTimeout {
			h.clients.Remove(cid)
			c.Close(websocket.ClosePolicyViolation, "heartbeat timeout")
			continue
		}
		if idle >= heartbeatInterval {
			h.write(c, types.PushMessage{Event: "ping"})
		}
	}
}

func (h *Hub) closeAll() {
	for cid, c := range h.clients.Items() {
		h.clients.Remove(cid)
		c.Close(websocket.CloseGoingAway, "server shutting down")
	}
}
