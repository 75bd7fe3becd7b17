package localstore

import "sync"

type quota struct {
	Store
	mu    sync.Mutex
	limit int64
}

// WithQuota 限制命名空间内键与值的总字节数，超出时写入失败且不重试
func WithQuota(s Store, limit int64) Store {
	return &quota{Store: s, limit: limit}
}

func (q *quota) SetRaw(key string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	var used int64
	for _, k := range q.Store.Keys() {
		if k == key {
			continue
		}
		if v, ok := q.Store.GetRaw(k); ok {
			used += int64(len(k) + len(v))
		}
	}
	if used+int64(len(key)+len(data)) > q.limit {
		return ErrQuotaExceeded
	}
	return q.Store.SetRaw(key, data)
}
