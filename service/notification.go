package service

import (
	"context"
	"slices"
	"sync"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/errs"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// 内存中保留的未读通知上限
const maxUnread = 100

// Pusher 向本地 UI 连接推送消息，返回送达的连接数
type Pusher interface {
	Push(userID string, msg types.PushMessage) int
}

var _ INotificationFeed = (*NotificationFeed)(nil)

type INotificationFeed interface {
	Start()
	List(ctx context.Context, unreadOnly bool, limit int) ([]types.Notification, error)
	MarkRead(ctx context.Context, ids []string) error
	Unread() []types.Notification
	Close()
}

// NotificationFeed 登录后订阅与本人相关的表变更，登出后全部停止
type NotificationFeed struct {
	Realtime backend.Realtime
	Remote   backend.Store
	Session  ISessionService
	Hub      Pusher

	mu        sync.Mutex
	gen       uint64
	userID    string
	subs      []backend.Subscription
	cancel    context.CancelFunc
	unread    []types.Notification
	unobserve func()
}

func NewNotificationFeed(rt backend.Realtime, remote backend.Store, session ISessionService, hub Pusher) *NotificationFeed {
	return &NotificationFeed{Realtime: rt, Remote: remote, Session: session, Hub: hub}
}

// Start 跟随会话状态启停订阅
func (f *NotificationFeed) Start() {
	f.mu.Lock()
	if f.unobserve != nil {
		f.mu.Unlock()
		return
	}
	f.unobserve = f.Session.Observe(func(state SessionState, userID string, _ *types.User) {
		if state == StateAuthenticated && userID != "" {
			f.startFor(userID)
			return
		}
		f.stop()
	})
	f.mu.Unlock()
	if uid := f.Session.UserID(); uid != "" {
		f.startFor(uid)
	}
}

func (f *NotificationFeed) List(ctx context.Context, unreadOnly bool, limit int) ([]types.Notification, error) {
	uid := f.Session.UserID()
	if uid == "" {
		return nil, errs.Auth("not signed in", nil)
	}
	if limit <= 0 {
		limit = types.DefaultPageSize
	}
	return f.Remote.ListNotifications(ctx, uid, unreadOnly, min(limit, types.MaxPageSize))
}

// MarkRead ids 为空时全部标记
func (f *NotificationFeed) MarkRead(ctx context.Context, ids []string) error {
	uid := f.Session.UserID()
	if uid == "" {
		return errs.Auth("not signed in", nil)
	}
	if err := f.Remote.MarkNotificationsRead(ctx, uid, ids); err != nil {
		return err
	}
	f.mu.Lock()
	if len(ids) == 0 {
		f.unread = nil
	} else {
		f.unread = slices.DeleteFunc(f.unread, func(n types.Notification) bool { return slices.Contains(ids, n.ID) })
	}
	f.mu.Unlock()
	return nil
}

// Unread 订阅期间收到的未读通知，新的在前
func (f *NotificationFeed) Unread() []types.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.unread)
}

func (f *NotificationFeed) Close() {
	f.mu.Lock()
	unobserve := f.unobserve
	f.unobserve = nil
	f.mu.Unlock()
	if unobserve != nil {
		unobserve()
	}
	f.stop()
}

func subscriptionsFor(userID string) []types.SubscriptionConfig {
	return []types.SubscriptionConfig{
		{Schema: "public", Table: types.TableNotifications, Event: types.EventInsert, Column: "user_id", Value: userID},
		{Schema: "public", Table: types.TableFollows, Event: types.EventInsert, Column: "following_id", Value: userID},
	}
}

// startFor 先占位再启动，启动期间会话变化则丢弃本次订阅
func (f *NotificationFeed) startFor(userID string) {
	ctx, cancel := context.WithCancel(context.Background())
	f.mu.Lock()
	if f.userID == userID {
		f.mu.Unlock()
		cancel()
		return
	}
	f.gen++
	gen := f.gen
	old, oldCancel := f.subs, f.cancel
	f.userID = userID
	f.subs = nil
	f.cancel = cancel
	f.unread = nil
	f.mu.Unlock()
	release(old, oldCancel)

	cfgs := subscriptionsFor(userID)
	subs := make([]backend.Subscription, len(cfgs))
	for i, cfg := range cfgs {
		subs[i] = f.Realtime.Subscribe(cfg, func(ev types.RealtimeEvent) { f.handle(userID, ev) })
	}

	p := pool.New().WithErrors()
	for _, sub := range subs {
		p.Go(func() error { return sub.Start(ctx) })
	}
	if err := p.Wait(); err != nil {
		log.L.Warn("some realtime subscriptions failed to start", zap.String("user_id", userID), zap.Error(err))
	}

	current := f.Session.UserID() == userID
	f.mu.Lock()
	if f.gen != gen || !current {
		if f.gen == gen {
			f.userID = ""
			f.cancel = nil
		}
		f.mu.Unlock()
		release(subs, cancel)
		log.L.Info("session changed while starting notification feed, subscriptions dropped", zap.String("user_id", userID))
		return
	}
	f.subs = subs
	f.mu.Unlock()
	log.L.Info("notification feed started", zap.String("user_id", userID), zap.Int("subscriptions", len(subs)))
}

// stop 可重复调用，同时作废正在进行的启动
func (f *NotificationFeed) stop() {
	f.mu.Lock()
	f.gen++
	subs, cancel := f.subs, f.cancel
	f.subs = nil
	f.cancel = nil
	f.userID = ""
	f.unread = nil
	f.mu.Unlock()
	release(subs, cancel)
}

func release(subs []backend.Subscription, cancel context.CancelFunc) {
	for _, sub := range subs {
		sub.Stop()
	}
	if cancel != nil {
		cancel()
	}
}

func (f *NotificationFeed) handle(userID string, ev types.RealtimeEvent) {
	if ev.Table == types.TableNotifications {
		var n types.Notification
		if err := ev.Decode(&n); err != nil {
			log.L.Warn("decode notification failed", zap.Error(err))
		} else if !n.Read {
			f.mu.Lock()
			if f.userID == userID {
				f.unread = append([]types.Notification{n}, f.unread...)
				if len(f.unread) > maxUnread {
					f.unread = f.unread[:maxUnread]
				}
			}
			f.mu.Unlock()
		}
	}
	if f.Hub != nil {
		f.Hub.Push(userID, types.PushMessage{Event: string(ev.Type), Table: ev.Table, Data: ev.Record})
	}
}
