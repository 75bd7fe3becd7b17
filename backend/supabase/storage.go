package supabase

import (
	"context"
	"io"
)

func (b *Backend) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error) {
	if err := b.api.Upload(ctx, b.bucket, path, r, contentType); err != nil {
		return "", err
	}
	return b.api.PublicURL(b.bucket, path), nil
}

func (b *Backend) Remove(ctx context.Context, path string) error {
	return b.api.Remove(ctx, b.bucket, path)
}
