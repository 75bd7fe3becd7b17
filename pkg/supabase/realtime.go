package supabase

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	heartbeatInterval = 30 * time.Second
	maxBackoff        = 30 * time.Second
)

// PostgresChanges 订阅条件，Filter 形如 user_id=eq.123
type PostgresChanges struct {
	Event  string
	Schema string
	Table  string
	Filter string
}

// Change 一条表变更
type Change struct {
	Type            string
	Schema          string
	Table           string
	Record          gjson.Result
	OldRecord       gjson.Result
	CommitTimestamp time.Time
}

// Channel 独占一条 websocket 的订阅
type Channel struct {
	url     string
	token   func() string
	cfg     PostgresChanges
	handler func(Change)
	dialer  *websocket.Dialer

	mu      sync.Mutex
	conn    *websocket.Conn
	ref     int
	started bool

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Channel 创建订阅，Start 之前不会建立连接
func (c *Client) Channel(cfg PostgresChanges, handler func(Change)) *Channel {
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	if cfg.Event == "" {
		cfg.Event = "*"
	}
	return &Channel{
		url:     RealtimeURL(c.baseURL, c.apiKey),
		token:   c.bearer,
		cfg:     cfg,
		handler: handler,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		done:    make(chan struct{}),
	}
}

// RealtimeURL http(s) 地址转换为 realtime websocket 地址
func RealtimeURL(baseURL, apiKey string) string {
	ws := baseURL
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	return ws + "/realtime/v1/websocket?apikey=" + url.QueryEscape(apiKey) + "&vsn=1.0.0"
}

func (ch *Channel) Topic() string {
	return "realtime:" + ch.cfg.Schema + ":" + ch.cfg.Table
}

// Start 首次连接同步完成，之后在后台读取并在断线后重连
func (ch *Channel) Start(ctx context.Context) error {
	ch.mu.Lock()
	if ch.started {
		ch.mu.Unlock()
		return nil
	}
	ch.started = true
	ch.mu.Unlock()

	if err := ch.connect(ctx); err != nil {
		return err
	}
	ch.wg.Add(2)
	go ch.readLoop(ctx)
	go ch.heartbeat(ctx)
	return nil
}

// Stop 可重复调用
func (ch *Channel) Stop() {
	ch.stopOnce.Do(func() {
		close(ch.done)
		ch.mu.Lock()
		if ch.conn != nil {
			_ = ch.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = ch.conn.Close()
		}
		ch.mu.Unlock()
	})
	ch.wg.Wait()
}

func (ch *Channel) stopped(ctx context.Context) bool {
	select {
	case <-ch.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (ch *Channel) connect(ctx context.Context) error {
	conn, _, err := ch.dialer.DialContext(ctx, ch.url, nil)
	if err != nil {
		return errs.Network("realtime connect failed", err)
	}
	ch.mu.Lock()
	select {
	case <-ch.done:
		ch.mu.Unlock()
		_ = conn.Close()
		return errs.Network("realtime channel stopped", nil)
	default:
	}
	ch.conn = conn
	err = ch.send("phx_join", ch.Topic(), map[string]any{
		"config": map[string]any{
			"postgres_changes": []map[string]string{{
				"event":  ch.cfg.Event,
				"schema": ch.cfg.Schema,
				"table":  ch.cfg.Table,
				"filter": ch.cfg.Filter,
			}},
		},
		"access_token": ch.token(),
	})
	ch.mu.Unlock()
	if err != nil {
		_ = conn.Close()
		return errs.Network("realtime join failed", err)
	}
	log.L.Info("realtime channel joined", zap.String("topic", ch.Topic()), zap.String("filter", ch.cfg.Filter))
	return nil
}

// send 调用方持有 mu
func (ch *Channel) send(event, topic string, payload any) error {
	ch.ref++
	ref := strconv.Itoa(ch.ref)
	return ch.conn.WriteJSON(map[string]any{
		"topic":    topic,
		"event":    event,
		"payload":  payload,
		"ref":      ref,
		"join_ref": ref,
	})
}

func (ch *Channel) readLoop(ctx context.Context) {
	defer ch.wg.Done()
	backoff := time.Second
	for {
		ch.mu.Lock()
		conn := ch.conn
		ch.mu.Unlock()

		if conn != nil {
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					break
				}
				backoff = time.Second
				ch.dispatch(msg)
			}
			ch.mu.Lock()
			if ch.conn == conn {
				ch.conn = nil
			}
			ch.mu.Unlock()
			_ = conn.Close()
		}
		if ch.stopped(ctx) {
			return
		}
		log.L.Warn("realtime channel dropped, reconnecting", zap.String("topic", ch.Topic()), zap.Duration("backoff", backoff))
		select {
		case <-time.After(backoff):
		case <-ch.done:
			return
		case <-ctx.Done():
			return
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
		if err := ch.connect(ctx); err != nil {
			log.L.Warn("realtime reconnect failed", zap.String("topic", ch.Topic()), zap.Error(err))
			ch.mu.Lock()
			ch.conn = nil
			ch.mu.Unlock()
		}
	}
}

func (ch *Channel) heartbeat(ctx context.Context) {
	defer ch.wg.Done()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ch.done:
			return
		case <-ctx.Done():
			ch.mu.Lock()
			if ch.conn != nil {
				_ = ch.conn.Close()
			}
			ch.mu.Unlock()
			return
		case <-ticker.C:
			ch.mu.Lock()
			if ch.conn != nil {
				if err := ch.send("heartbeat", "phoenix", map[string]any{}); err != nil {
					log.L.Warn("realtime heartbeat failed", zap.Error(err))
				}
			}
			ch.mu.Unlock()
		}
	}
}

func (ch *Channel) dispatch(msg []byte) {
	res := gjson.ParseBytes(msg)
	if res.Get("event").String() != "postgres_changes" {
		return
	}
	change, ok := ParseChange(res.Get("payload"))
	if !ok {
		return
	}
	ch.handler(change)
}

// ParseChange 解析 postgres_changes 的 payload
func ParseChange(payload gjson.Result) (Change, bool) {
	data := payload.Get("data")
	if !data.Exists() {
		return Change{}, false
	}
	c := Change{
		Type:      data.Get("type").String(),
		Schema:    data.Get("schema").String(),
		Table:     data.Get("table").String(),
		Record:    data.Get("record"),
		OldRecord: data.Get("old_record"),
	}
	if ts := data.Get("commit_timestamp").String(); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			c.CommitTimestamp = t
		}
	}
	return c, c.Type != "" && c.Table != ""
}
