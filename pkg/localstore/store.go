// Package localstore 本地键值持久化，按命名空间隔离。
//
// 写入同步完成并立即可读；读取缺失或损坏的键返回调用方给出的默认值。
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/client"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"go.uber.org/zap"
)

var (
	ErrSerialize     = errors.New("localstore: value cannot be serialized")
	ErrQuotaExceeded = errors.New("localstore: quota exceeded")
)

// Store 原始字节层，具体驱动实现
type Store interface {
	GetRaw(key string) ([]byte, bool)
	SetRaw(key string, data []byte) error
	Remove(key string) error
	Keys() []string
}

// Get 读取并反序列化，缺失或损坏都返回 def
func Get[T any](s Store, key string, def T) T {
	raw, ok := s.GetRaw(key)
	if !ok {
		return def
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.L.Warn("corrupt local value, using default", zap.String("key", key), zap.Error(err))
		return def
	}
	return out
}

// Set 序列化后写入
func Set[T any](s Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSerialize, key, err)
	}
	return s.SetRaw(key, raw)
}

// New 按配置创建驱动
func New(conf *config.Config) (Store, error) {
	var (
		s   Store
		err error
	)
	lc := conf.Local
	switch lc.Driver {
	case config.LocalMemory:
		s = NewMemory()
	case config.LocalRedis:
		s = NewRedis(client.NewRedisClient(conf), lc.Namespace)
	case config.LocalFile, "":
		s, err = NewFile(lc.Dir, lc.Namespace)
	default:
		return nil, fmt.Errorf("localstore: unknown driver %q", lc.Driver)
	}
	if err != nil {
		return nil, err
	}
	log.L.Info("local store ready", zap.String("driver", lc.Driver), zap.String("namespace", lc.Namespace))
	if lc.QuotaBytes > 0 {
		return WithQuota(s, lc.QuotaBytes), nil
	}
	return s, nil
}
