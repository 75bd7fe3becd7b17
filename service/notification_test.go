package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedRealtime 订阅的 Start 阻塞到 open 被调用
type gatedRealtime struct {
	gate     chan struct{}
	once     sync.Once
	started  atomic.Int32
	stopped  atomic.Int32
	subCount atomic.Int32
}

var _ backend.Realtime = (*gatedRealtime)(nil)

func newGatedRealtime() *gatedRealtime {
	return &gatedRealtime{gate: make(chan struct{})}
}

func (r *gatedRealtime) open() { r.once.Do(func() { close(r.gate) }) }

// live 已启动但未停止的订阅数
func (r *gatedRealtime) live() int32 { return r.started.Load() - r.stopped.Load() }

func (r *gatedRealtime) Subscribe(cfg types.SubscriptionConfig, h backend.EventHandler) backend.Subscription {
	r.subCount.Add(1)
	return &gatedSubscription{rt: r}
}

type gatedSubscription struct {
	rt      *gatedRealtime
	started atomic.Bool
	stopped atomic.Bool
}

func (s *gatedSubscription) Start(ctx context.Context) error {
	s.started.Store(true)
	s.rt.started.Add(1)
	<-s.rt.gate
	return nil
}

func (s *gatedSubscription) Stop() {
	if s.started.Load() && s.stopped.CompareAndSwap(false, true) {
		s.rt.stopped.Add(1)
	}
}

func feedState(f *NotificationFeed) (string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userID, len(f.subs)
}

func TestNotificationFeed_LogoutDuringStartDropsSubscriptions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.register(t, "ann@example.com", "ann")

	rt := newGatedRealtime()
	defer rt.open()
	feed := NewNotificationFeed(rt, env.backend, env.session, nil)
	defer feed.Close()

	done := make(chan struct{})
	go func() {
		feed.Start()
		close(done)
	}()
	want := int32(len(subscriptionsFor("x")))
	require.Eventually(t, func() bool { return rt.started.Load() == want }, 2*time.Second, 5*time.Millisecond)

	env.session.Logout(ctx)
	rt.open()
	<-done

	assert.Equal(t, StateUnauthenticated, env.session.State())
	assert.Zero(t, rt.live())
	uid, n := feedState(feed)
	assert.Empty(t, uid)
	assert.Zero(t, n)
}

func TestNotificationFeed_ConcurrentStartsSubscribeOnce(t *testing.T) {
	env := newTestEnv(t)
	ann := env.register(t, "ann@example.com", "ann")

	rt := newGatedRealtime()
	defer rt.open()
	feed := NewNotificationFeed(rt, env.backend, env.session, nil)

	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			feed.startFor(ann)
		}()
	}
	want := int32(len(subscriptionsFor(ann)))
	require.Eventually(t, func() bool { return rt.started.Load() == want }, 2*time.Second, 5*time.Millisecond)
	rt.open()
	wg.Wait()

	assert.Equal(t, want, rt.subCount.Load())
	uid, n := feedState(feed)
	assert.Equal(t, ann, uid)
	assert.Equal(t, int(want), n)

	feed.Close()
	assert.Zero(t, rt.live())
}

func TestNotificationFeed_SubscribesToRecipientColumns(t *testing.T) {
	for _, cfg := range subscriptionsFor("u-1") {
		assert.Equal(t, "u-1", cfg.Value)
		switch cfg.Table {
		case types.TableNotifications:
			assert.Equal(t, "user_id", cfg.Column)
		case types.TableFollows:
			assert.Equal(t, "following_id", cfg.Column)
		default:
			t.Fatalf("unexpected subscription on %s", cfg.Table)
		}
	}
}
