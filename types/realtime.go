package types

import (
	"encoding/json"
	"time"
)

type RealtimeEventType string

const (
	EventInsert RealtimeEventType = "INSERT"
	EventUpdate RealtimeEventType = "UPDATE"
	EventDelete RealtimeEventType = "DELETE"
	EventAll    RealtimeEventType = "*"
)

// Realtime 表名
const (
	TableNotifications = "notifications"
	TableLikes         = "likes"
	TableComments      = "comments"
	TableFollows       = "follows"
)

// SubscriptionConfig 订阅某张表的变更
type SubscriptionConfig struct {
	Schema string            `json:"schema"`
	Table  string            `json:"table"`
	Event  RealtimeEventType `json:"event"`
	Column string            `json:"column"` // 过滤列，如 user_id
	Value  string            `json:"value"`  // 过滤值
}

// Matches 本地广播时判断事件是否命中订阅
func (c SubscriptionConfig) Matches(ev RealtimeEvent) bool {
	if c.Table != ev.Table {
		return false
	}
	if c.Event != "" && c.Event != EventAll && c.Event != ev.Type {
		return false
	}
	if c.Column == "" {
		return true
	}
	v, ok := ev.Record[c.Column]
	if !ok {
		return false
	}
	s, _ := v.(string)
	return s == c.Value
}

// RealtimeEvent 表变更事件
type RealtimeEvent struct {
	Type      RealtimeEventType `json:"type"`
	Table     string            `json:"table"`
	Schema    string            `json:"schema"`
	Record    map[string]any    `json:"record,omitempty"`
	OldRecord map[string]any    `json:"old_record,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Decode 把 Record 解码为具体类型
func (e RealtimeEvent) Decode(dst any) error {
	raw, err := json.Marshal(e.Record)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// PushMessage 推送给本地 UI 的消息
type PushMessage struct {
	Event string `json:"event"`
	Table string `json:"table,omitempty"`
	Data  any    `json:"data,omitempty"`
}
