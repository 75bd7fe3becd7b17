package supabase

import (
	"github.com/petroshong/calofeed-sub001/backend"
	sb "github.com/petroshong/calofeed-sub001/pkg/supabase"
	"github.com/petroshong/calofeed-sub001/types"
)

// Subscribe 每个订阅独占一条 websocket
func (b *Backend) Subscribe(cfg types.SubscriptionConfig, h backend.EventHandler) backend.Subscription {
	pc := sb.PostgresChanges{
		Event:  string(cfg.Event),
		Schema: cfg.Schema,
		Table:  cfg.Table,
	}
	if cfg.Column != "" {
		pc.Filter = cfg.Column + "=eq." + cfg.Value
	}
	return b.api.Channel(pc, func(c sb.Change) {
		h(toEvent(c))
	})
}

func toEvent(c sb.Change) types.RealtimeEvent {
	ev := types.RealtimeEvent{
		Type:      types.RealtimeEventType(c.Type),
		Table:     c.Table,
		Schema:    c.Schema,
		Timestamp: c.CommitTimestamp,
	}
	if m, ok := c.Record.Value().(map[string]any); ok {
		ev.Record = m
	}
	if m, ok := c.OldRecord.Value().(map[string]any); ok {
		ev.OldRecord = m
	}
	return ev
}
