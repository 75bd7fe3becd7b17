package memory

import (
	"context"
	"sync"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/types"
	"go.uber.org/zap"
)

const subscriptionBuffer = 64

type broker struct {
	mu   sync.RWMutex
	subs map[*subscription]struct{}
}

func newBroker() *broker {
	return &broker{subs: make(map[*subscription]struct{})}
}

func (br *broker) publish(ev types.RealtimeEvent) {
	br.mu.RLock()
	defer br.mu.RUnlock()
	for s := range br.subs {
		if !s.cfg.Matches(ev) {
			continue
		}
		select {
		case s.events <- ev:
		default:
			log.L.Warn("realtime subscriber is slow, dropping event", zap.String("table", ev.Table))
		}
	}
}

type subscription struct {
	br      *broker
	cfg     types.SubscriptionConfig
	handler backend.EventHandler
	events  chan types.RealtimeEvent

	mu       sync.Mutex
	started  bool
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func (b *Backend) Subscribe(cfg types.SubscriptionConfig, h backend.EventHandler) backend.Subscription {
	return &subscription{
		br:      b.broker,
		cfg:     cfg,
		handler: h,
		events:  make(chan types.RealtimeEvent, subscriptionBuffer),
		done:    make(chan struct{}),
	}
}

func (s *subscription) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true

	s.br.mu.Lock()
	s.br.subs[s] = struct{}{}
	s.br.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case ev := <-s.events:
				s.handler(ev)
			case <-s.done:
				return
			case <-ctx.Done():
				s.detach()
				return
			}
		}
	}()
	return nil
}

func (s *subscription) Stop() {
	s.stopOnce.Do(func() {
		s.detach()
		close(s.done)
	})
	s.wg.Wait()
}

func (s *subscription) detach() {
	s.br.mu.Lock()
	delete(s.br.subs, s)
	s.br.mu.Unlock()
}
