package memory

import (
	"context"
	"io"

	"github.com/petroshong/calofeed-sub001/pkg/errs"
)

const objectURLPrefix = "memory://objects/"

func (b *Backend) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errs.Unknown("read upload", err)
	}
	b.mu.Lock()
	b.objects[path] = data
	b.mu.Unlock()
	return objectURLPrefix + path, nil
}

func (b *Backend) Remove(ctx context.Context, path string) error {
	b.mu.Lock()
	delete(b.objects, path)
	b.mu.Unlock()
	return nil
}

// Object 测试里读取已上传内容
func (b *Backend) Object(path string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[path]
	return data, ok
}
