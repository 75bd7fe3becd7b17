// Package supabase 把托管后端适配为 backend 接口。
package supabase

import (
	"sync"
	"time"

	"github.com/petroshong/calofeed-sub001/backend"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/localstore"
	sb "github.com/petroshong/calofeed-sub001/pkg/supabase"
)

// 会话持久化到本地存储的键
const sessionKey = "auth_session"

// 令牌距离过期不足该时长即刷新
const refreshLeeway = time.Minute

type Backend struct {
	api    *sb.Client
	local  localstore.Store
	bucket string
	now    func() time.Time

	mu        sync.Mutex
	listeners map[int]backend.AuthHandler
	nextID    int
}

var (
	_ backend.Identity      = (*Backend)(nil)
	_ backend.Store         = (*Backend)(nil)
	_ backend.ObjectStorage = (*Backend)(nil)
	_ backend.Realtime      = (*Backend)(nil)
)

func New(conf *config.Supabase, local localstore.Store) (*Backend, error) {
	api, err := sb.New(sb.Config{
		URL:     conf.URL,
		APIKey:  conf.AnonKey,
		Timeout: time.Duration(conf.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	return NewWithClient(api, local, conf.Bucket), nil
}

func NewWithClient(api *sb.Client, local localstore.Store, bucket string) *Backend {
	if bucket == "" {
		bucket = "meal-images"
	}
	b := &Backend{
		api:       api,
		local:     local,
		bucket:    bucket,
		now:       time.Now,
		listeners: make(map[int]backend.AuthHandler),
	}
	if s := b.storedSession(); s != nil {
		api.SetAccessToken(s.AccessToken)
	}
	return b
}

func (b *Backend) Client() *backend.Client {
	return &backend.Client{
		Identity: b,
		Store:    b,
		Storage:  b,
		Realtime: b,
	}
}
