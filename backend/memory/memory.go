// Package memory 进程内的演示后端，账号、数据与实时推送都保存在内存里。
package memory

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/types"
	"golang.org/x/crypto/bcrypt"
)

type pair struct {
	a, b string
}

type account struct {
	id       string
	email    string
	hash     []byte
	metadata map[string]any
}

// Backend 同时实现 Identity、Store、ObjectStorage 与 Realtime
type Backend struct {
	mu sync.RWMutex

	secret     []byte
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time

	accounts  map[string]*account // email -> account
	profiles  map[string]types.User
	session   *types.Session
	listeners map[int]backend.AuthHandler
	nextID    int

	meals         []types.Meal // 新的在前
	likes         map[pair]bool
	bookmarks     map[pair]bool
	follows       map[pair]time.Time
	comments      []types.Comment
	notifications []types.Notification
	challenges    []types.Challenge
	participants  map[string]map[string]float64
	objects       map[string][]byte

	broker *broker
}

type Option func(*Backend)

// WithClock 测试用
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// WithBcryptCost 测试里调低哈希成本
func WithBcryptCost(cost int) Option {
	return func(b *Backend) { b.bcryptCost = cost }
}

func New(conf *config.Jwt, opts ...Option) *Backend {
	secret := conf.Secret
	if secret == "" {
		secret = "calofeed-memory-backend"
	}
	b := &Backend{
		secret:       []byte(secret),
		ttl:          time.Duration(conf.ExpiresSecs) * time.Second,
		bcryptCost:   bcrypt.DefaultCost,
		now:          time.Now,
		accounts:     make(map[string]*account),
		profiles:     make(map[string]types.User),
		listeners:    make(map[int]backend.AuthHandler),
		likes:        make(map[pair]bool),
		bookmarks:    make(map[pair]bool),
		follows:      make(map[pair]time.Time),
		participants: make(map[string]map[string]float64),
		objects:      make(map[string][]byte),
		broker:       newBroker(),
	}
	if b.ttl <= 0 {
		b.ttl = time.Hour
	}
	for _, opt := range opts {
		opt(b)
	}
	b.challenges = seedChallenges(b.now())
	return b
}

// Client 识别能力由外部提供
func (b *Backend) Client() *backend.Client {
	return &backend.Client{
		Identity: b,
		Store:    b,
		Storage:  b,
		Realtime: b,
	}
}

var (
	_ backend.Identity      = (*Backend)(nil)
	_ backend.Store         = (*Backend)(nil)
	_ backend.ObjectStorage = (*Backend)(nil)
	_ backend.Realtime      = (*Backend)(nil)
)

// publish 调用方不能持有 mu
func (b *Backend) publish(table string, typ types.RealtimeEventType, record any) {
	b.broker.publish(types.RealtimeEvent{
		Type:      typ,
		Table:     table,
		Schema:    "public",
		Record:    toRecord(record),
		Timestamp: b.now(),
	})
}

func toRecord(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func seedChallenges(now time.Time) []types.Challenge {
	start := now.AddDate(0, 0, -3)
	return []types.Challenge{
		{
			ID:          "c-streak-30",
			Title:       "30-Day Logging Streak",
			Description: "Log at least one meal every day for 30 days.",
			Type:        types.ChallengeStreak,
			Target:      30,
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, 45),
			Reward:      "Consistency badge",
			Category:    "habits",
			Difficulty:  "medium",
			Rules:       []string{"One entry per calendar day", "Missed days reset the streak"},
		},
		{
			ID:          "c-protein-1000",
			Title:       "Protein Power",
			Description: "Eat 1000 g of protein within two weeks.",
			Type:        types.ChallengeTotal,
			Target:      1000,
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, 14),
			Reward:      "Protein badge",
			Category:    "nutrition",
			Difficulty:  "hard",
			Rules:       []string{"Only logged entries count"},
			Prize:       "1 month premium",
		},
		{
			ID:          "c-veggie-daily",
			Title:       "Daily Greens",
			Description: "Post a meal with vegetables every day this week.",
			Type:        types.ChallengeDaily,
			Target:      7,
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, 7),
			Reward:      "Greens badge",
			Category:    "community",
			Difficulty:  "easy",
			Rules:       []string{"Tag the meal with #greens"},
		},
	}
}
