package localstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisTimeout = 2 * time.Second

// Redis 键格式 <namespace>:<key>
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedis(rdb redis.UniversalClient, namespace string) *Redis {
	return &Redis{rdb: rdb, prefix: namespace + ":"}
}

func (r *Redis) GetRaw(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	v, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.L.Warn("redis local get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return v, true
}

func (r *Redis) SetRaw(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	err := r.rdb.Set(ctx, r.prefix+key, data, 0).Err()
	if err != nil && strings.Contains(err.Error(), "OOM") {
		return ErrQuotaExceeded
	}
	return err
}

func (r *Redis) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	return r.rdb.Del(ctx, r.prefix+key).Err()
}

func (r *Redis) Keys() []string {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	var keys []string
	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		log.L.Warn("redis local scan failed", zap.Error(err))
	}
	sort.Strings(keys)
	return keys
}
